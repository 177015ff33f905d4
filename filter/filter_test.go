// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package filter

import "testing"

func TestParseEmpty(t *testing.T) {
	f, err := Parse("")
	if err != nil {
		t.Fatal(err)
	}
	if !f.IsZero() {
		t.Fatalf("expected zero filter, got %+v", f)
	}
}

func TestParseFreeText(t *testing.T) {
	f, err := Parse("http.Serve")
	if err != nil {
		t.Fatal(err)
	}
	if !f.HasText || f.Text != "http.Serve" {
		t.Fatalf("got %+v", f)
	}
	if !f.MatchesText("main.http.Serve(...)") {
		t.Fatal("expected substring match")
	}
	if f.MatchesText("unrelated") {
		t.Fatal("expected no match")
	}
}

func TestParseWaitExact(t *testing.T) {
	f, err := Parse("wait:5")
	if err != nil {
		t.Fatal(err)
	}
	if !f.MatchesWait(5) || f.MatchesWait(4) || f.MatchesWait(6) {
		t.Fatal("exact predicate mismatched")
	}
}

func TestParseWaitGreater(t *testing.T) {
	// wait:>5 means min = 6: 5 itself is excluded.
	f, err := Parse("wait:>5")
	if err != nil {
		t.Fatal(err)
	}
	if f.MatchesWait(5) || !f.MatchesWait(6) {
		t.Fatal("min predicate mismatched")
	}
}

func TestParseWaitPlusSuffix(t *testing.T) {
	// wait:5+ means min = 5: 5 itself is included.
	f, err := Parse("wait:5+")
	if err != nil {
		t.Fatal(err)
	}
	if !f.MatchesWait(5) || f.MatchesWait(4) {
		t.Fatal("inclusive min predicate mismatched")
	}
}

func TestParseWaitLess(t *testing.T) {
	// wait:<5 means max = 4: 5 itself is excluded.
	f, err := Parse("wait:<5")
	if err != nil {
		t.Fatal(err)
	}
	if f.MatchesWait(5) || !f.MatchesWait(4) {
		t.Fatal("max predicate mismatched")
	}
}

func TestParseWaitRange(t *testing.T) {
	f, err := Parse("wait:5-10")
	if err != nil {
		t.Fatal(err)
	}
	if f.MatchesWait(4) || f.MatchesWait(11) {
		t.Fatal("range predicate leaked outside bounds")
	}
	if !f.MatchesWait(5) || !f.MatchesWait(10) || !f.MatchesWait(7) {
		t.Fatal("range predicate rejected an in-bounds value")
	}
}

func TestParseWaitPlusTextCombo(t *testing.T) {
	f, err := Parse("wait:>5 http.Serve")
	if err != nil {
		t.Fatal(err)
	}
	if !f.HasMinWait || !f.HasText {
		t.Fatalf("got %+v", f)
	}
}

func TestParseRejectsTwoFreeTextTokens(t *testing.T) {
	if _, err := Parse("foo bar"); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseRejectsConflictingBounds(t *testing.T) {
	cases := []string{
		"wait:5 wait:>6",   // exact + min
		"wait:>5 wait:7",   // min + exact
		"wait:>5 wait:3+",  // two min bounds
		"wait:<5 wait:<3",  // two max bounds
		"wait:>5 wait:1-2", // range on top of a min bound
		"wait:10-5",        // inverted range
		"wait:>10 wait:<5", // empty combined range
		"wait:-5",          // negative bound
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Fatalf("%s: expected error", c)
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, c := range []string{"wait:abc", "wait:", "wait:>x", "wait:1-y"} {
		if _, err := Parse(c); err == nil {
			t.Fatalf("%s: expected error", c)
		}
	}
}

func TestParseErrorType(t *testing.T) {
	_, err := Parse("wait:oops")
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("wrong error type: %T", err)
	}
	if pe.Token != "wait:oops" {
		t.Fatalf("got token %q", pe.Token)
	}
}
