// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import "testing"

func TestRegisterAndGet(t *testing.T) {
	cv, err := Register("test_var", "3", NONE)
	if err != nil {
		t.Fatalf("Register() = %v", err)
	}
	if got, ok := Get("test_var"); !ok || got != cv {
		t.Errorf("Get(test_var) = %v, %v", got, ok)
	}
	if _, err := Register("test_var", "4", NONE); err == nil {
		t.Errorf("second Register(test_var) = nil")
	}
}

func TestValue(t *testing.T) {
	cv := MustRegister("test_value", "1.5", NONE)
	if got := cv.Value(); got != 1.5 {
		t.Errorf("Value() = %v, want 1.5", got)
	}
	cv.SetValue(2)
	if got := cv.String(); got != "2" {
		t.Errorf("String() after SetValue(2) = %q", got)
	}
	cv.SetByString("nonsense")
	if got := cv.Value(); got != 0 {
		t.Errorf("Value() of non-numeric = %v", got)
	}
	cv.Reset()
	if got := cv.Value(); got != 1.5 {
		t.Errorf("Value() after Reset = %v", got)
	}
}

func TestCallback(t *testing.T) {
	cv := MustRegister("test_callback", "0", NONE)
	calls := 0
	cv.SetCallback(func(*Cvar) { calls++ })
	cv.SetByString("1")
	cv.SetValue(2)
	if calls != 2 {
		t.Errorf("callback ran %d times, want 2", calls)
	}
	if !cv.Bool() {
		t.Errorf("Bool() = false for %q", cv.String())
	}
}

func TestROM(t *testing.T) {
	cv := MustRegister("test_rom", "5", ROM)
	cv.SetByString("6")
	if got := cv.Value(); got != 5 {
		t.Errorf("ROM cvar changed to %v", got)
	}
}
