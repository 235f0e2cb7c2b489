// Copyright 2026 The Stagehand Authors
// SPDX-License-Identifier: Apache-2.0

package editor

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/stagehand-foundation/stagehand/lib/version"
)

// Singleton is a named global object reachable through the reflective
// call/set/get operations. Members are explicit function tables, not
// runtime reflection.
//
// Dangerous singletons expose process, filesystem, or global-settings
// capability; the method registry blocks them unless the
// dangerous-operations flag is set in the bridge configuration. The
// gate lives in one place (the registry's target resolution), not in
// individual members.
type Singleton struct {
	Name      string
	Dangerous bool
	Methods   map[string]func(args []any) (any, error)
	Getters   map[string]func() (any, error)
	Setters   map[string]func(value any) error
}

// MemberNames returns the singleton's methods and properties, sorted,
// for inspect_object.
func (s *Singleton) MemberNames() (methods, properties []string) {
	for name := range s.Methods {
		methods = append(methods, name)
	}
	seen := map[string]bool{}
	for name := range s.Getters {
		if !seen[name] {
			properties = append(properties, name)
			seen[name] = true
		}
	}
	for name := range s.Setters {
		if !seen[name] {
			properties = append(properties, name)
			seen[name] = true
		}
	}
	sort.Strings(methods)
	sort.Strings(properties)
	return methods, properties
}

// Singleton looks up a named singleton, or nil.
func (e *Editor) Singleton(name string) *Singleton {
	return e.singletons[name]
}

// SingletonNames returns all singleton names, sorted.
func (e *Editor) SingletonNames() []string {
	names := make([]string, 0, len(e.singletons))
	for name := range e.singletons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// builtinSingletons constructs the fixed singleton table. The set is
// closed: callers cannot register singletons at runtime.
func builtinSingletons(e *Editor) map[string]*Singleton {
	table := map[string]*Singleton{}

	register := func(s *Singleton) {
		table[s.Name] = s
	}

	register(&Singleton{
		Name: "Engine",
		Methods: map[string]func(args []any) (any, error){
			"get_version_info": func(_ []any) (any, error) {
				return map[string]any{
					"string": version.Info(),
					"go":     runtime.Version(),
				}, nil
			},
		},
		Getters: map[string]func() (any, error){
			"version": func() (any, error) { return version.Info(), nil },
		},
	})

	register(&Singleton{
		Name: "Time",
		Methods: map[string]func(args []any) (any, error){
			"get_ticks_msec": func(_ []any) (any, error) {
				return e.Uptime().Milliseconds(), nil
			},
			"get_datetime_string": func(_ []any) (any, error) {
				return time.Now().UTC().Format(time.RFC3339), nil
			},
		},
	})

	// OS reaches process environment and working directory: gated.
	register(&Singleton{
		Name:      "OS",
		Dangerous: true,
		Methods: map[string]func(args []any) (any, error){
			"get_name": func(_ []any) (any, error) {
				return runtime.GOOS, nil
			},
			"get_environment": func(args []any) (any, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("get_environment expects 1 argument")
				}
				name, ok := args[0].(string)
				if !ok {
					return nil, fmt.Errorf("get_environment expects a string")
				}
				return os.Getenv(name), nil
			},
			"get_process_id": func(_ []any) (any, error) {
				return os.Getpid(), nil
			},
		},
	})

	// ProjectSettings mutates global project state: gated.
	register(&Singleton{
		Name:      "ProjectSettings",
		Dangerous: true,
		Methods: map[string]func(args []any) (any, error){
			"get_setting": func(args []any) (any, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("get_setting expects 1 argument")
				}
				name, ok := args[0].(string)
				if !ok {
					return nil, fmt.Errorf("get_setting expects a string name")
				}
				value, exists := e.Setting(name)
				if !exists {
					return nil, nil
				}
				return value, nil
			},
			"set_setting": func(args []any) (any, error) {
				if len(args) != 2 {
					return nil, fmt.Errorf("set_setting expects 2 arguments")
				}
				name, ok := args[0].(string)
				if !ok {
					return nil, fmt.Errorf("set_setting expects a string name")
				}
				e.SetSetting(name, args[1])
				return nil, nil
			},
		},
	})

	// FileAccess reads arbitrary project files: gated.
	register(&Singleton{
		Name:      "FileAccess",
		Dangerous: true,
		Methods: map[string]func(args []any) (any, error){
			"get_file_as_string": func(args []any) (any, error) {
				if len(args) != 1 {
					return nil, fmt.Errorf("get_file_as_string expects 1 argument")
				}
				path, ok := args[0].(string)
				if !ok {
					return nil, fmt.Errorf("get_file_as_string expects a string path")
				}
				absolute, err := e.resolveProjectPath(path)
				if err != nil {
					return nil, err
				}
				data, err := os.ReadFile(absolute)
				if err != nil {
					return nil, fmt.Errorf("reading %s: %w", path, err)
				}
				return string(data), nil
			},
		},
	})

	return table
}
