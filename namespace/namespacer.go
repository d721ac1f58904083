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

// Package namespace rewrites the resources and compiled classes of a graph of components so that
// every reference names the package owning the resource.  Each component is resolved against its
// own symbol table followed by the tables of its transitive dependencies; the resulting
// resolution map drives the rewriting of its XML resources, manifest and class jars and the
// synthesis of its R classes.
package namespace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/yuweiguocn/build-system-sub001/android"
	"github.com/yuweiguocn/build-system-sub001/graph"
	"github.com/yuweiguocn/build-system-sub001/symbols"
)

// DefaultShardSize is the number of resource files rewritten by one work item.
const DefaultShardSize = 100

const (
	resOutDir       = "res"
	manifestOutFile = "AndroidManifest.xml"
	rJarOutFile     = "R.jar"
	rTxtOutFile     = "R.txt"
	publicOutFile   = "public.txt"
)

// Config holds the inputs of a Namespacer that are not part of the graph.
type Config struct {
	// Fs is the filesystem inputs are read from and outputs written to.  Defaults to the OS
	// filesystem.
	Fs afero.Fs
	// OutDir receives one directory per component, named after its sanitized name.
	OutDir string
	// Parallelism bounds the number of concurrent work items.  Defaults to the number of CPUs.
	Parallelism int
	// ShardSize is the number of resource files per work item.  Defaults to DefaultShardSize.
	ShardSize int
	// KeepGoing runs every work item even after one fails, and reports all the errors.
	KeepGoing bool
	// Logger receives warnings and progress.  Defaults to discarding everything.
	Logger logrus.FieldLogger
}

// Namespacer runs the rewriting of a graph.  Warnings accumulate across calls.
type Namespacer struct {
	config   Config
	fs       afero.Fs
	logger   logrus.FieldLogger
	warnings *Warnings
}

func New(config Config) *Namespacer {
	n := &Namespacer{
		config: config,
		fs:     config.Fs,
		logger: config.Logger,
	}
	if n.fs == nil {
		n.fs = afero.NewOsFs()
	}
	if n.logger == nil {
		n.logger = discardLogger()
	}
	if n.config.Parallelism <= 0 {
		n.config.Parallelism = runtime.NumCPU()
	}
	if n.config.ShardSize <= 0 {
		n.config.ShardSize = DefaultShardSize
	}
	n.warnings = NewWarnings(n.logger)
	return n
}

// Warnings returns the warnings raised so far.
func (n *Namespacer) Warnings() []Warning {
	return n.warnings.List()
}

// Result lists what Run produced.
type Result struct {
	// Outputs are the files written, sorted.
	Outputs  []string
	Warnings []Warning
}

// forEachNode calls f for every node with at most Parallelism calls running at once.
func (n *Namespacer) forEachNode(ctx context.Context, nodes []*graph.Node,
	f func(ctx context.Context, node *graph.Node) error) error {

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n.config.Parallelism)
	for _, node := range nodes {
		node := node
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return f(ctx, node)
		})
	}
	return g.Wait()
}

// LoadTables reads the symbol table of every node, merging the fragments of a node into one
// table.  Files ending in ".pb" hold binary tables; other files are in the text format, defaulting
// to the node's id as package.
func (n *Namespacer) LoadTables(ctx context.Context, g *graph.Graph) (map[*graph.Node]*symbols.Table, error) {
	var lock sync.Mutex
	tables := make(map[*graph.Node]*symbols.Table)
	err := n.forEachNode(ctx, g.Nodes(), func(ctx context.Context, node *graph.Node) error {
		t, err := n.loadTable(node)
		if err != nil {
			return fmt.Errorf("%s: %w", node, err)
		}
		lock.Lock()
		tables[node] = t
		lock.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tables, nil
}

func (n *Namespacer) loadTable(node *graph.Node) (*symbols.Table, error) {
	var fragments []*symbols.Table
	for _, file := range node.Files(graph.SymbolTables) {
		data, err := afero.ReadFile(n.fs, file)
		if err != nil {
			return nil, err
		}
		var t *symbols.Table
		if strings.HasSuffix(file, ".pb") {
			t, err = symbols.UnmarshalTable(data)
		} else {
			t, err = symbols.ReadTable(bytes.NewReader(data), node.ID())
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		fragments = append(fragments, t)
	}
	pkg := node.ID()
	if len(fragments) > 0 {
		pkg = fragments[0].Package()
	}
	return symbols.Merge(pkg, fragments...)
}

func (n *Namespacer) loadPublic(node *graph.Node, pkg string) (*symbols.Table, error) {
	files := node.Files(graph.PublicSymbols)
	if len(files) == 0 {
		return nil, nil
	}
	var fragments []*symbols.Table
	for _, file := range files {
		f, err := n.fs.Open(file)
		if err != nil {
			return nil, err
		}
		t, err := symbols.ReadPublicTxt(f, pkg)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		fragments = append(fragments, t)
	}
	return symbols.Merge(pkg, fragments...)
}

// Resolutions computes the resolution map of every node: its own table followed by the tables
// of its transitive dependencies in graph order.
func (n *Namespacer) Resolutions(ctx context.Context, g *graph.Graph,
	tables map[*graph.Node]*symbols.Table) (map[*graph.Node]*ResolutionMap, error) {

	var lock sync.Mutex
	maps := make(map[*graph.Node]*ResolutionMap)
	err := n.forEachNode(ctx, g.Nodes(), func(ctx context.Context, node *graph.Node) error {
		list := []*symbols.Table{tables[node]}
		for _, dep := range node.TransitiveDeps() {
			list = append(list, tables[dep])
		}
		m, err := NewResolutionMap(list, n.warnings)
		if err != nil {
			return fmt.Errorf("%s: %w", node, err)
		}
		lock.Lock()
		maps[node] = m
		lock.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return maps, nil
}

// workItem rewrites or synthesizes one artifact of a node.
type workItem struct {
	node     *graph.Node
	artifact string
	run      func() ([]string, error)
}

// Run rewrites every artifact of every node of g into OutDir.  Each output is published
// atomically, so a failing artifact leaves no output behind.  Unless KeepGoing is set no new work
// is started after the first error.  The Result lists the outputs that were written even when an
// error is returned.
func (n *Namespacer) Run(ctx context.Context, g *graph.Graph) (*Result, error) {
	tables, err := n.LoadTables(ctx, g)
	if err != nil {
		return nil, err
	}
	maps, err := n.Resolutions(ctx, g, tables)
	if err != nil {
		return nil, err
	}

	byPackage := make(map[string]*ResolutionMap)
	for _, node := range g.Nodes() {
		m := maps[node]
		if _, ok := byPackage[m.Package()]; !ok {
			byPackage[m.Package()] = m
		}
	}

	var items []workItem
	for _, node := range g.Nodes() {
		nodeItems, err := n.plan(node, maps[node], byPackage)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node, err)
		}
		items = append(items, nodeItems...)
	}

	var lock sync.Mutex
	var outputs []string
	var errs []error

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(n.config.Parallelism)
	for _, item := range items {
		if egCtx.Err() != nil {
			break
		}
		item := item
		eg.Go(func() error {
			if egCtx.Err() != nil {
				return nil
			}
			n.logger.WithFields(logrus.Fields{
				"node":     item.node.ID(),
				"artifact": item.artifact,
			}).Debug("rewriting")

			outs, err := item.run()
			lock.Lock()
			outputs = append(outputs, outs...)
			lock.Unlock()
			if err != nil {
				err = fmt.Errorf("%s: %s: %w", item.node, item.artifact, err)
				if !n.config.KeepGoing {
					return err
				}
				lock.Lock()
				errs = append(errs, err)
				lock.Unlock()
			}
			return nil
		})
	}
	err = eg.Wait()
	if n.config.KeepGoing {
		err = errors.Join(errs...)
	}
	if err == nil {
		err = ctx.Err()
	}

	sort.Strings(outputs)
	return &Result{Outputs: outputs, Warnings: n.warnings.List()}, err
}

// plan returns the work items of one node.
func (n *Namespacer) plan(node *graph.Node, m *ResolutionMap, byPackage map[string]*ResolutionMap) ([]workItem, error) {
	outDir := filepath.Join(n.config.OutDir, node.SanitizedName())
	var items []workItem
	planned := make(map[string]string)
	claim := func(out, input string) error {
		if prev, ok := planned[out]; ok {
			return fmt.Errorf("%s and %s both produce %s", prev, input, out)
		}
		planned[out] = input
		return nil
	}

	for _, dir := range node.Files(graph.ResourceDirs) {
		files, err := ListResources(n.fs, dir)
		if err != nil {
			return nil, err
		}
		for _, rel := range files {
			if err := claim(filepath.Join(outDir, resOutDir, rel), filepath.Join(dir, rel)); err != nil {
				return nil, err
			}
		}
		for i, shard := range android.ShardStrings(files, n.config.ShardSize) {
			dir, shard := dir, shard
			items = append(items, workItem{
				node:     node,
				artifact: fmt.Sprintf("%s [shard %d]", dir, i),
				run: func() ([]string, error) {
					return n.rewriteResources(m, dir, shard, filepath.Join(outDir, resOutDir))
				},
			})
		}
	}

	manifests := node.Files(graph.Manifests)
	if len(manifests) > 1 {
		return nil, fmt.Errorf("more than one manifest: %s", strings.Join(manifests, ", "))
	}
	for _, manifest := range manifests {
		manifest := manifest
		out := filepath.Join(outDir, manifestOutFile)
		if err := claim(out, manifest); err != nil {
			return nil, err
		}
		items = append(items, workItem{
			node:     node,
			artifact: manifest,
			run: func() ([]string, error) {
				return n.rewriteFile(manifest, out, func(data []byte) ([]byte, error) {
					return RewriteManifest(data, m)
				})
			},
		})
	}

	rewriter := NewClassRewriter(m, byPackage)
	for _, classes := range node.Files(graph.ClassJars) {
		classes := classes
		out := filepath.Join(outDir, filepath.Base(classes))
		if err := claim(out, classes); err != nil {
			return nil, err
		}
		items = append(items, workItem{
			node:     node,
			artifact: classes,
			run: func() ([]string, error) {
				return n.rewriteFile(classes, out, func(data []byte) ([]byte, error) {
					if strings.HasSuffix(classes, ".class") {
						rewritten, _, err := rewriter.RewriteClass(data)
						return rewritten, err
					}
					buf := &bytes.Buffer{}
					if _, err := rewriter.RewriteJar(bytes.NewReader(data), int64(len(data)), buf); err != nil {
						return nil, err
					}
					return buf.Bytes(), nil
				})
			},
		})
	}

	for _, out := range []string{rJarOutFile, rTxtOutFile, publicOutFile} {
		if err := claim(filepath.Join(outDir, out), "symbols"); err != nil {
			return nil, err
		}
	}
	items = append(items, workItem{
		node:     node,
		artifact: "symbols",
		run: func() ([]string, error) {
			return n.writeSymbols(node, m, outDir)
		},
	})
	return items, nil
}

func (n *Namespacer) rewriteFile(in, out string, rewrite func([]byte) ([]byte, error)) ([]string, error) {
	data, err := afero.ReadFile(n.fs, in)
	if err != nil {
		return nil, err
	}
	rewritten, err := rewrite(data)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(n.fs, out, rewritten); err != nil {
		return nil, err
	}
	return []string{out}, nil
}

// rewriteResources rewrites one shard of a resource directory.  Every file is its own artifact:
// a file that fails leaves no output, and the other files of the shard are still written.
func (n *Namespacer) rewriteResources(m *ResolutionMap, dir string, files []string, outDir string) ([]string, error) {
	var outputs []string
	var errs []error
	for _, rel := range files {
		out := filepath.Join(outDir, filepath.FromSlash(rel))
		written, err := n.rewriteFile(filepath.Join(dir, rel), out, func(data []byte) ([]byte, error) {
			return RewriteResource(rel, data, m)
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", rel, err))
			continue
		}
		outputs = append(outputs, written...)
	}
	return outputs, errors.Join(errs...)
}

// writeSymbols writes the R classes, the namespaced table and the public list of a node.
func (n *Namespacer) writeSymbols(node *graph.Node, m *ResolutionMap, outDir string) ([]string, error) {
	table, err := NamespaceTable(m)
	if err != nil {
		return nil, err
	}
	public, err := n.loadPublic(node, table.Package())
	if err != nil {
		return nil, err
	}

	rJar, rTxt, publicTxt := &bytes.Buffer{}, &bytes.Buffer{}, &bytes.Buffer{}
	if err := WriteRJar(rJar, table); err != nil {
		return nil, err
	}
	if err := symbols.WriteTable(rTxt, table); err != nil {
		return nil, err
	}
	if err := symbols.WritePublicList(publicTxt, table, public); err != nil {
		return nil, err
	}

	var outputs []string
	for _, out := range []struct {
		name string
		data []byte
	}{
		{rJarOutFile, rJar.Bytes()},
		{rTxtOutFile, rTxt.Bytes()},
		{publicOutFile, publicTxt.Bytes()},
	} {
		path := filepath.Join(outDir, out.name)
		if err := writeFileAtomic(n.fs, path, out.data); err != nil {
			return outputs, err
		}
		outputs = append(outputs, path)
	}
	return outputs, nil
}
