package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		setup   func(t *testing.T, path string) // setup function to prepare test
		wantErr bool
	}{
		{
			name:    "create_new_config",
			force:   false,
			setup:   nil, // no pre-existing file
			wantErr: false,
		},
		{
			name:  "overwrite_existing_with_force",
			force: true,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: false,
		},
		{
			name:  "fail_without_force",
			force: false,
			setup: func(t *testing.T, path string) {
				if err := os.WriteFile(path, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantErr: true, // should fail because file exists
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config")

			if tt.setup != nil {
				tt.setup(t, confPath)
			}

			var cli struct {
				Options `embed:""`
			}

			parser, err := kong.New(&cli,
				kong.Vars{ConfigIdentifier: confPath},
				Options{}.Vars(),
			)
			if err != nil {
				t.Fatal(err)
			}

			kctx, err := parser.Parse([]string{"--family=windows"})
			if err != nil {
				t.Fatal(err)
			}

			ctx := WithContext(context.Background(), kctx)

			err = (&Init{Force: tt.force}).Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Init.Run() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				return
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var doc map[string]map[string]any
			if err := yaml.Unmarshal(content, &doc); err != nil {
				t.Fatalf("generated config is not valid YAML: %v\n%s", err, content)
			}

			got := doc[ConfigIdentifier]
			if got == nil {
				t.Fatalf("missing %q namespace:\n%s", ConfigIdentifier, content)
			}

			if got["family"] != "windows" {
				t.Errorf("family = %v, want windows", got["family"])
			}

			if got["primitive_bytes"] != "include_bytes" {
				t.Errorf("primitive_bytes = %v, want include_bytes", got["primitive_bytes"])
			}
		})
	}
}

// TestInitDocument tests that document skips help and empty flags.
func TestInitDocument(t *testing.T) {
	t.Parallel()

	var cli struct {
		Verbose bool   `help:"Enable verbose output" name:"verbose"`
		Output  string `help:"Output file"           name:"output"`
		Count   int    `help:"Number of items"       name:"count"`
		Empty   string `help:"Never set"             name:"empty"`
	}

	parser, err := kong.New(&cli)
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse([]string{"--verbose", "--output=test.txt", "--count=5"})
	if err != nil {
		t.Fatal(err)
	}

	ctx := WithContext(context.Background(), kctx)

	data, err := yaml.Marshal((&Init{}).document(ctx))
	if err != nil {
		t.Fatal(err)
	}

	out := string(data)

	for _, want := range []string{"config:", "verbose: true", "output: test.txt", "count: 5"} {
		if !strings.Contains(out, want) {
			t.Errorf("document missing %q:\n%s", want, out)
		}
	}

	for _, reject := range []string{"help", "empty"} {
		if strings.Contains(out, reject) {
			t.Errorf("document contains %q:\n%s", reject, out)
		}
	}
}
