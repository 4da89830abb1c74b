package datasetsv2

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

// Targets selects the workspaces a migration run covers: either every
// workspace or an explicit list of ids.
type Targets struct {
	all bool
	ids []uint
}

func AllWorkspaces() Targets {
	return Targets{all: true}
}

func Workspaces(ids ...uint) Targets {
	return Targets{ids: slices.Clone(ids)}
}

func (t Targets) All() bool {
	return t.all
}

func (t Targets) Ids() []uint {
	return slices.Clone(t.ids)
}

func (t Targets) String() string {
	if t.all {
		return "all"
	}
	parts := make([]string, 0, len(t.ids))
	for _, id := range t.ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}

// ParseTargets accepts "all" or a comma separated list of workspace ids.
func ParseTargets(value string) (Targets, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "all") {
		return AllWorkspaces(), nil
	}

	var ids []uint
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return Targets{}, fmt.Errorf("invalid workspace id %q", part)
		}
		ids = append(ids, uint(id))
	}
	return Workspaces(ids...), nil
}

type targetsFile struct {
	Workspaces any `yaml:"workspaces"`
}

// LoadTargetsFile reads a yaml file of the form
//
//	workspaces: all
//
// or
//
//	workspaces: [1, 2, 3]
func LoadTargetsFile(path string) (Targets, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Targets{}, fmt.Errorf("error reading targets file: %w", err)
	}

	var file targetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Targets{}, fmt.Errorf("error parsing targets file: %w", err)
	}

	switch v := file.Workspaces.(type) {
	case string:
		return ParseTargets(v)
	case []any:
		ids := make([]uint, 0, len(v))
		for _, item := range v {
			id, ok := item.(int)
			if !ok || id <= 0 {
				return Targets{}, fmt.Errorf("invalid workspace id %v in targets file", item)
			}
			ids = append(ids, uint(id))
		}
		return Workspaces(ids...), nil
	case nil:
		return Targets{}, fmt.Errorf("targets file %s does not list any workspaces", path)
	default:
		return Targets{}, fmt.Errorf("invalid workspaces entry %v in targets file", v)
	}
}
