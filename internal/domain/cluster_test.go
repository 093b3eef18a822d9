package domain

import "testing"

func TestVarsGet(t *testing.T) {
	v := Vars{"data_root": "/data"}

	got, ok := Get(v, "data_root")
	if !ok || got != "/data" {
		t.Fatalf("Get(data_root) = %q, %v", got, ok)
	}

	if _, ok := Get(v, "nope"); ok {
		t.Fatal("expected miss for unknown key")
	}
	if _, ok := Get(nil, "data_root"); ok {
		t.Fatal("expected miss on nil vars")
	}
}

func TestVarsSet_InitializesNilMap(t *testing.T) {
	var v Vars
	v = Set(v, "home", "/home/user")

	got, ok := Get(v, "home")
	if !ok || got != "/home/user" {
		t.Fatalf("Set on nil vars lost the value: %q, %v", got, ok)
	}

	v = Set(v, "home", "/other")
	if got, _ := Get(v, "home"); got != "/other" {
		t.Fatalf("Set should overwrite, got %q", got)
	}
}
