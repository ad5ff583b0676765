package streamenc

import "testing"

type jsonerValue struct{ key string }

func (j jsonerValue) MarshalStream(key string) any {
	return "marshaled:" + key
}

func TestReplacerApplyJSONerHook(t *testing.T) {
	var r Replacer
	got := r.apply("field", jsonerValue{})
	if got != "marshaled:field" {
		t.Errorf("apply() = %v, want marshaled:field", got)
	}
}

func TestReplacerApplyJSONerHookWithNilReplacer(t *testing.T) {
	var r *Replacer
	got := r.apply("field", jsonerValue{})
	if got != "marshaled:field" {
		t.Errorf("apply() with nil replacer = %v, want marshaled:field (JSONer must run regardless)", got)
	}
}

func TestReplacerApplyFuncRunsAfterJSONer(t *testing.T) {
	r := Replacer{Func: func(key string, value any) any {
		return value.(string) + "+func"
	}}
	got := r.apply("field", jsonerValue{})
	if got != "marshaled:field+func" {
		t.Errorf("apply() = %v, want marshaled:field+func", got)
	}
}

func TestReplacerApplyCollapsesUndefinedLookalikes(t *testing.T) {
	r := Replacer{Func: func(key string, value any) any {
		var ch chan int
		return ch
	}}
	got := r.apply("field", 1)
	if !isUndefined(got) {
		t.Errorf("apply() = %v, want the Undefined sentinel", got)
	}
}

func TestFilterKeys(t *testing.T) {
	tests := []struct {
		name  string
		allow []string
		keys  []string
		want  []string
	}{
		{"nil allow-list passes through", nil, []string{"b", "a"}, []string{"b", "a"}},
		{"allow-list order wins over input order", []string{"a", "b"}, []string{"b", "a"}, []string{"a", "b"}},
		{"allow-list drops absent keys", []string{"a", "z"}, []string{"a", "b"}, []string{"a"}},
		{"empty allow-list drops everything", []string{}, []string{"a", "b"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Replacer{Allow: tt.allow}
			got := r.filterKeys(tt.keys)
			if len(got) != len(tt.want) {
				t.Fatalf("filterKeys() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("filterKeys()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFilterKeysNilReceiver(t *testing.T) {
	var r *Replacer
	got := r.filterKeys([]string{"a", "b"})
	if len(got) != 2 {
		t.Errorf("filterKeys() on nil receiver = %v, want passthrough", got)
	}
}
