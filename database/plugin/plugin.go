// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plugin

import "fmt"

type Plugin interface {
	Start() error
	Stop() error
}

// ErrorPlugin is a plugin that always returns an error on Start()
type ErrorPlugin struct {
	Err error
}

func (e *ErrorPlugin) Start() error {
	return e.Err
}

func (e *ErrorPlugin) Stop() error {
	return nil
}

// NewErrorPlugin creates a new error plugin that returns the given error on Start()
func NewErrorPlugin(err error) Plugin {
	return &ErrorPlugin{Err: err}
}

// StartPlugin gets a plugin from the registry and starts it
func StartPlugin(pluginType PluginType, pluginName string) (Plugin, error) {
	p := GetPlugin(pluginType, pluginName)
	if p == nil {
		return nil, fmt.Errorf(
			"%s plugin '%s' not found",
			PluginTypeName(pluginType),
			pluginName,
		)
	}
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf(
			"failed to start %s plugin '%s': %w",
			PluginTypeName(pluginType),
			pluginName,
			err,
		)
	}
	return p, nil
}

// SetPluginOption sets the value of a named option for a plugin entry. This
// is used by callers that need to override plugin defaults before the plugin
// is instantiated (for example to point data-dir at the configured database
// path). Unknown options are ignored, since not every implementation of a
// plugin type supports the same options.
// NOTE: this writes to the option destinations without synchronization and
// must only be called during initialization.
func SetPluginOption(
	pluginType PluginType,
	pluginName string,
	optionName string,
	value any,
) error {
	entry := findPluginEntry(pluginType, pluginName)
	if entry == nil {
		return fmt.Errorf(
			"plugin %s of type %s not found",
			pluginName,
			PluginTypeName(pluginType),
		)
	}
	for _, opt := range entry.Options {
		if opt.Name != optionName {
			continue
		}
		switch opt.Type {
		case PluginOptionTypeString:
			v, ok := value.(string)
			if !ok {
				return fmt.Errorf(
					"invalid type for option %s: expected string",
					optionName,
				)
			}
			return setOptionDest(opt, v)
		case PluginOptionTypeBool:
			v, ok := value.(bool)
			if !ok {
				return fmt.Errorf(
					"invalid type for option %s: expected bool",
					optionName,
				)
			}
			return setOptionDest(opt, v)
		case PluginOptionTypeInt:
			v, ok := value.(int)
			if !ok {
				return fmt.Errorf(
					"invalid type for option %s: expected int",
					optionName,
				)
			}
			return setOptionDest(opt, v)
		case PluginOptionTypeUint:
			switch tv := value.(type) {
			case uint64:
				return setOptionDest(opt, tv)
			case int:
				if tv < 0 {
					return fmt.Errorf(
						"invalid value for option %s: negative int",
						optionName,
					)
				}
				return setOptionDest(opt, uint64(tv))
			default:
				return fmt.Errorf(
					"invalid type for option %s: expected uint64 or int",
					optionName,
				)
			}
		default:
			return fmt.Errorf(
				"unknown plugin option type %d for option %s",
				opt.Type,
				optionName,
			)
		}
	}
	return nil
}

func setOptionDest[T any](opt PluginOption, value T) error {
	if opt.Dest == nil {
		return fmt.Errorf("nil destination for option %s", opt.Name)
	}
	dest, ok := opt.Dest.(*T)
	if !ok {
		return fmt.Errorf(
			"invalid destination type for option %s: expected %T",
			opt.Name,
			dest,
		)
	}
	if dest == nil {
		return fmt.Errorf("nil destination pointer for option %s", opt.Name)
	}
	*dest = value
	return nil
}
