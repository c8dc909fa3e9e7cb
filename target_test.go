package iceaxe

import (
	"errors"
	"testing"
)

func TestClassifyTargets(t *testing.T) {
	column, err := SelectColumn(userInfo, "id")
	if err != nil {
		t.Fatal(err)
	}
	targets, err := classifyTargets([]any{
		SelectModel(userInfo),
		column,
		SelectFunc("count"),
		Alias("total", SelectFunc("count")),
	})
	if err != nil {
		t.Fatal(err)
	}
	wantKinds := []targetKind{targetTable, targetColumn, targetFunction, targetAlias}
	for i, want := range wantKinds {
		if targets[i].kind != want {
			t.Fatalf("target %d: expected kind %s, got %s", i, want, targets[i].kind)
		}
	}
	if targets[1].key != "User_id" {
		t.Fatalf("expected column key User_id, got %q", targets[1].key)
	}
	if targets[3].key != "total" {
		t.Fatalf("alias wrapper must override the wrapped name, got %q", targets[3].key)
	}
}

func TestClassifyRejectsUnknownEntry(t *testing.T) {
	_, err := classifyTargets([]any{"not a select"})
	if !errors.Is(err, ErrInvalidSelect) {
		t.Fatalf("expected ErrInvalidSelect, got %v", err)
	}
}

func TestClassifyRejectsNilModel(t *testing.T) {
	_, err := classifyTargets([]any{&TableRef{}})
	if !errors.Is(err, ErrInvalidSelect) {
		t.Fatalf("expected ErrInvalidSelect, got %v", err)
	}
}

func TestSelectColumnUnknown(t *testing.T) {
	if _, err := SelectColumn(userInfo, "nope"); err == nil {
		t.Fatal("expected unknown column to fail")
	}
}

func TestFieldKey(t *testing.T) {
	if got := FieldKey("User", "id"); got != "User_id" {
		t.Fatalf("expected User_id, got %q", got)
	}
}
