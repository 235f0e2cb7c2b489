// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/json"
	"testing"
)

func TestErrorCode(t *testing.T) {
	if got := NewError(CodeNotFound, "node missing", nil).Code(); got != CodeNotFound {
		t.Errorf("Code: %q", got)
	}
	plain := &Error{Message: "no code here"}
	if got := plain.Code(); got != "" {
		t.Errorf("codeless message: %q", got)
	}
}

// A response without an id must omit the field entirely, not emit
// id: null — callers distinguish transport errors by its absence.
func TestResponseIDOmitted(t *testing.T) {
	encoded, err := json.Marshal(Response{OK: false, Error: NewError(CodeParse, "bad line", nil)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, present := decoded["id"]; present {
		t.Errorf("id present: %s", encoded)
	}

	id := int64(0)
	encoded, _ = json.Marshal(Response{ID: &id, OK: true})
	json.Unmarshal(encoded, &decoded)
	if decoded["id"] != 0.0 {
		t.Errorf("zero id lost: %s", encoded)
	}
}
