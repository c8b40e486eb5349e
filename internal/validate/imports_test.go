// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePrefix = "github.com/ManuGH/e33config/internal/"

// TestLayeringRules enforces the dependency order of the settings engine:
// leaves (cfgerr, ini, distro, fsutil, validate, log) never import the
// components built on them, and only cmd/ reads the application config.
func TestLayeringRules(t *testing.T) {
	projectRoot := findProjectRoot(t)

	leaves := []string{"internal/cfgerr", "internal/ini", "internal/distro", "internal/fsutil", "internal/validate", "internal/log"}
	upper := []string{"manager", "backup", "preset", "custom", "config", "watch", "metrics", "platform"}

	violations := []string{}

	// Rule 1: leaf packages MUST NOT import the components built on top of them
	for _, leaf := range leaves {
		for _, up := range upper {
			violations = append(violations, checkForbiddenImport(
				t, projectRoot,
				leaf,
				modulePrefix+up,
				"Leaf package must not import a higher layer",
			)...)
		}
	}

	// Rule 2: platform/* MUST NOT import config/* (platform is lower than config)
	violations = append(violations, checkForbiddenImport(
		t, projectRoot,
		"internal/platform",
		modulePrefix+"config",
		"Platform layer must not import config layer",
	)...)

	// Rule 3: the facade receives resolved settings; it MUST NOT read config itself
	violations = append(violations, checkForbiddenImport(
		t, projectRoot,
		"internal/manager",
		modulePrefix+"config",
		"Manager must be wired by cmd/, not read application config",
	)...)

	// Rule 4: the document model knows nothing about presets or backups
	violations = append(violations, checkForbiddenImport(
		t, projectRoot,
		"internal/preset",
		modulePrefix+"backup",
		"Presets must not depend on backups",
	)...)

	if len(violations) > 0 {
		t.Errorf("Layering violations detected:\n\n%s", strings.Join(violations, "\n"))
	}
}

// TestNoUtilsPackages prevents creation of "utils hell" packages.
func TestNoUtilsPackages(t *testing.T) {
	projectRoot := findProjectRoot(t)

	forbiddenDirs := []string{
		"internal/utils",
		"internal/util",
		"internal/common",
		"internal/helpers",
		"internal/shared",
	}

	violations := []string{}
	for _, dir := range forbiddenDirs {
		fullPath := filepath.Join(projectRoot, dir)
		if _, err := os.Stat(fullPath); err == nil {
			violations = append(violations, fmt.Sprintf("Forbidden package detected: %s", dir))
		}
	}

	if len(violations) > 0 {
		t.Errorf("Utils package violations:\n\n%s", strings.Join(violations, "\n"))
	}
}

// --- Helper Functions ---

func checkForbiddenImport(t *testing.T, projectRoot, sourceDir, forbiddenImportPrefix, reason string) []string {
	t.Helper()

	sourcePath := filepath.Join(projectRoot, sourceDir)
	files, err := findGoFiles(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Directory doesn't exist - no violation
		}
		t.Fatalf("Failed to scan %s: %v", sourceDir, err)
	}

	violations := []string{}
	for _, file := range files {
		imports, err := extractImports(file)
		if err != nil {
			t.Logf("Warning: failed to parse %s: %v", file, err)
			continue
		}

		for _, imp := range imports {
			if imp == forbiddenImportPrefix || strings.HasPrefix(imp, forbiddenImportPrefix+"/") {
				relPath, _ := filepath.Rel(projectRoot, file)
				violations = append(violations, fmt.Sprintf(
					"  ❌ %s imports %s\n     Reason: %s",
					relPath, imp, reason,
				))
			}
		}
	}

	return violations
}

func findGoFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func extractImports(filePath string) ([]string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, filePath, nil, parser.ImportsOnly)
	if err != nil {
		return nil, err
	}

	imports := []string{}
	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)
		imports = append(imports, importPath)
	}
	return imports, nil
}

func findProjectRoot(t *testing.T) string {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("Could not find project root (no go.mod found)")
		}
		dir = parent
	}
}
