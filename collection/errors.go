// Copyright 2018 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package collection

import "fmt"

// DuplicateFileName is returned by AddFile when the computed display name
// collides with an already-loaded file. The collection is left unchanged.
type DuplicateFileName struct {
	Name string
}

func (e *DuplicateFileName) Error() string {
	return fmt.Sprintf("a file named %q is already loaded", e.Name)
}

// UnknownFile is returned by RemoveFile/RenameFile when no loaded file has
// the given display name.
type UnknownFile struct {
	Name string
}

func (e *UnknownFile) Error() string {
	return fmt.Sprintf("no loaded file named %q", e.Name)
}

// ConfigError reports a malformed rule found at configuration time: the
// rule is dropped and the remainder of its list continues to apply.
type ConfigError struct {
	Rule   string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid rule %q: %s", e.Rule, e.Reason)
}
