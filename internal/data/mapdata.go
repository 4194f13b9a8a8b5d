package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Obstacle is a circular blocker inside a map.
type Obstacle struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	R float64 `yaml:"r"`
}

// MapInfo describes a rectangular arena centred on the origin.
type MapInfo struct {
	Key       string     `yaml:"key"`
	Name      string     `yaml:"name"`
	Width     float64    `yaml:"width"`
	Height    float64    `yaml:"height"`
	Obstacles []Obstacle `yaml:"obstacles"`
}

type mapListFile struct {
	Maps []MapInfo `yaml:"maps"`
}

// MapTable holds map layouts by key.
type MapTable struct {
	maps map[string]*MapInfo
}

// Get returns the map for key, or nil when unknown.
func (t *MapTable) Get(key string) *MapInfo {
	if t == nil {
		return nil
	}
	return t.maps[key]
}

func (t *MapTable) Count() int {
	return len(t.maps)
}

func LoadMapTable(path string) (*MapTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map_list: %w", err)
	}
	return ParseMapTable(raw)
}

func DefaultMapTable() *MapTable {
	t, err := ParseMapTable(mustStock("maps.yaml"))
	if err != nil {
		panic(fmt.Sprintf("data: stock map table: %v", err))
	}
	return t
}

func ParseMapTable(raw []byte) (*MapTable, error) {
	var f mapListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse map_list: %w", err)
	}
	t := &MapTable{maps: make(map[string]*MapInfo, len(f.Maps))}
	for i := range f.Maps {
		m := &f.Maps[i]
		if m.Width <= 0 || m.Height <= 0 {
			return nil, fmt.Errorf("map_list: %s needs positive width and height", m.Key)
		}
		for _, o := range m.Obstacles {
			if o.X*o.X+o.Y*o.Y <= o.R*o.R {
				return nil, fmt.Errorf("map_list: %s has an obstacle over the spawn point", m.Key)
			}
		}
		t.maps[m.Key] = m
	}
	return t, nil
}
