// Copyright 2024 Google Inc. All rights reserved.
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

package main

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/yuweiguocn/build-system-sub001/graph"
)

// jobConfig is the job file of the tool:
//
//	out_dir: out/namespaced
//	roots: [app]
//	components:
//	  - key: app
//	    id: com.example.app
//	    symbols: [app/R.txt]
//	    public: [app/public.txt]
//	    res_dirs: [app/res]
//	    manifest: app/AndroidManifest.xml
//	    classes: [app/classes.jar]
//	    deps: [lib]
//	  - key: lib
//	    id: com.example.lib
//	    symbols: [lib/R.txt]
//
// Relative paths are relative to the directory of the job file.
type jobConfig struct {
	OutDir     string            `yaml:"out_dir"`
	Roots      []string          `yaml:"roots"`
	Components []componentConfig `yaml:"components"`

	dir string
}

type componentConfig struct {
	// Key identifies the component in deps and roots.  Defaults to ID.
	Key      string   `yaml:"key"`
	ID       string   `yaml:"id"`
	Symbols  []string `yaml:"symbols"`
	Public   []string `yaml:"public"`
	ResDirs  []string `yaml:"res_dirs"`
	Manifest string   `yaml:"manifest"`
	Classes  []string `yaml:"classes"`
	Deps     []string `yaml:"deps"`
}

func loadJob(fs afero.Fs, path string) (*jobConfig, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	job := &jobConfig{dir: filepath.Dir(path)}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(job); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

func (j *jobConfig) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(j.dir, p)
}

func (j *jobConfig) paths(list []string) []string {
	var ret []string
	for _, p := range list {
		ret = append(ret, j.path(p))
	}
	return ret
}

// outDir returns the output directory, override taking precedence over the job file.
func (j *jobConfig) outDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if j.OutDir == "" {
		return "", fmt.Errorf("no output directory, set out_dir or --out_dir")
	}
	return j.path(j.OutDir), nil
}

// graph builds the dependency graph of the job.  Without explicit roots every component no other
// component depends on is a root.
func (j *jobConfig) graph() (*graph.Graph, error) {
	descriptors := make(map[string]*graph.Descriptor)
	files := make(graph.FileSets)
	addFiles := func(typ graph.ArtifactType, key string, list []string) {
		if len(list) == 0 {
			return
		}
		if files[typ] == nil {
			files[typ] = make(map[string][]string)
		}
		files[typ][key] = j.paths(list)
	}

	var keys []string
	for _, c := range j.Components {
		key := c.Key
		if key == "" {
			key = c.ID
		}
		if key == "" {
			return nil, fmt.Errorf("component without key or id")
		}
		if _, ok := descriptors[key]; ok {
			return nil, fmt.Errorf("component %q declared twice", key)
		}
		descriptors[key] = &graph.Descriptor{Key: key, ID: c.ID}
		keys = append(keys, key)

		addFiles(graph.SymbolTables, key, c.Symbols)
		addFiles(graph.PublicSymbols, key, c.Public)
		addFiles(graph.ResourceDirs, key, c.ResDirs)
		addFiles(graph.ClassJars, key, c.Classes)
		if c.Manifest != "" {
			addFiles(graph.Manifests, key, []string{c.Manifest})
		}
	}

	depended := make(map[string]bool)
	for i, c := range j.Components {
		d := descriptors[keys[i]]
		for _, dep := range c.Deps {
			dd, ok := descriptors[dep]
			if !ok {
				return nil, fmt.Errorf("component %q depends on unknown component %q", keys[i], dep)
			}
			d.Deps = append(d.Deps, dd)
			depended[dep] = true
		}
	}

	var roots []*graph.Descriptor
	if len(j.Roots) > 0 {
		for _, key := range j.Roots {
			d, ok := descriptors[key]
			if !ok {
				return nil, fmt.Errorf("unknown root %q", key)
			}
			roots = append(roots, d)
		}
	} else {
		for _, key := range keys {
			if !depended[key] {
				roots = append(roots, descriptors[key])
			}
		}
	}
	return graph.Build(roots, files)
}
