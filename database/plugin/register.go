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

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// EnvVarPrefix is prepended to generated plugin option environment variables
const EnvVarPrefix = "MODELGOV"

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	// CustomEnvVar overrides the generated environment variable name
	CustomEnvVar string
	Type         PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var pluginEntries []PluginEntry

// Register adds a plugin to the registry. Plugins register themselves from
// init() in their own package.
func Register(pluginEntry PluginEntry) {
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns all registered plugins of the given type
func GetPlugins(pluginType PluginType) []PluginEntry {
	ret := []PluginEntry{}
	for _, entry := range pluginEntries {
		if entry.Type == pluginType {
			ret = append(ret, entry)
		}
	}
	return ret
}

// GetPlugin returns a new instance of the named plugin, or nil if no such
// plugin is registered
func GetPlugin(pluginType PluginType, pluginName string) Plugin {
	entry := findPluginEntry(pluginType, pluginName)
	if entry == nil || entry.NewFromOptionsFunc == nil {
		return nil
	}
	return entry.NewFromOptionsFunc()
}

func findPluginEntry(pluginType PluginType, pluginName string) *PluginEntry {
	for i := range pluginEntries {
		if pluginEntries[i].Type == pluginType &&
			pluginEntries[i].Name == pluginName {
			return &pluginEntries[i]
		}
	}
	return nil
}

func optionFlagName(entry PluginEntry, opt PluginOption) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(entry.Type),
		entry.Name,
		opt.Name,
	)
}

func optionEnvVarName(entry PluginEntry, opt PluginOption) string {
	if opt.CustomEnvVar != "" {
		return opt.CustomEnvVar
	}
	name := strings.Join(
		[]string{
			EnvVarPrefix,
			PluginTypeName(entry.Type),
			entry.Name,
			opt.Name,
		},
		"_",
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// PopulateCmdlineOptions adds a flag for every plugin option to the provided
// flag set, named <type>-<plugin>-<option>
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for _, entry := range pluginEntries {
		for _, opt := range entry.Options {
			flagName := optionFlagName(entry, opt)
			switch opt.Type {
			case PluginOptionTypeString:
				dest, ok := opt.Dest.(*string)
				if !ok {
					return fmt.Errorf("invalid destination for flag %s", flagName)
				}
				def, _ := opt.DefaultValue.(string)
				fs.StringVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeBool:
				dest, ok := opt.Dest.(*bool)
				if !ok {
					return fmt.Errorf("invalid destination for flag %s", flagName)
				}
				def, _ := opt.DefaultValue.(bool)
				fs.BoolVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeInt:
				dest, ok := opt.Dest.(*int)
				if !ok {
					return fmt.Errorf("invalid destination for flag %s", flagName)
				}
				def, _ := opt.DefaultValue.(int)
				fs.IntVar(dest, flagName, def, opt.Description)
			case PluginOptionTypeUint:
				dest, ok := opt.Dest.(*uint64)
				if !ok {
					return fmt.Errorf("invalid destination for flag %s", flagName)
				}
				def, _ := opt.DefaultValue.(uint64)
				fs.Uint64Var(dest, flagName, def, opt.Description)
			default:
				return fmt.Errorf(
					"unknown plugin option type %d for flag %s",
					opt.Type,
					flagName,
				)
			}
		}
	}
	return nil
}

// ProcessEnvVars applies plugin option values from the environment
func ProcessEnvVars() error {
	for _, entry := range pluginEntries {
		for _, opt := range entry.Options {
			envName := optionEnvVarName(entry, opt)
			raw, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			var value any
			switch opt.Type {
			case PluginOptionTypeString:
				value = raw
			case PluginOptionTypeBool:
				v, err := strconv.ParseBool(raw)
				if err != nil {
					return fmt.Errorf("parse %s: %w", envName, err)
				}
				value = v
			case PluginOptionTypeInt:
				v, err := strconv.Atoi(raw)
				if err != nil {
					return fmt.Errorf("parse %s: %w", envName, err)
				}
				value = v
			case PluginOptionTypeUint:
				v, err := strconv.ParseUint(raw, 10, 64)
				if err != nil {
					return fmt.Errorf("parse %s: %w", envName, err)
				}
				value = v
			}
			if err := SetPluginOption(entry.Type, entry.Name, opt.Name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ProcessConfig applies plugin option values from a config file. The map is
// keyed by plugin type name, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for _, entry := range pluginEntries {
		typeConfig, ok := pluginConfig[PluginTypeName(entry.Type)]
		if !ok {
			continue
		}
		options, ok := typeConfig[entry.Name]
		if !ok {
			continue
		}
		for optName, optValue := range options {
			if err := SetPluginOption(entry.Type, entry.Name, optName, optValue); err != nil {
				return fmt.Errorf(
					"%s plugin %s: %w",
					PluginTypeName(entry.Type),
					entry.Name,
					err,
				)
			}
		}
	}
	return nil
}
