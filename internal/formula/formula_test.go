package formula

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmaotrigine/homebrew-tap/internal/config"
	"github.com/lmaotrigine/homebrew-tap/internal/platform"
)

func testArchives() Archives {
	return Archives{
		MacARM:     Artifact{URL: "https://example.com/mac-arm.tar.xz", SHA256: "aa"},
		MacIntel:   Artifact{URL: "https://example.com/mac-intel.tar.xz", SHA256: "bb"},
		LinuxARM:   Artifact{URL: "https://example.com/linux-arm.tar.xz", SHA256: "cc"},
		LinuxIntel: Artifact{URL: "https://example.com/linux-intel.tar.xz", SHA256: "dd"},
	}
}

func TestRenderFull(t *testing.T) {
	f := config.Formula{
		Repo:     "lmaotrigine/my-cool-tool",
		Homepage: "https://github.com/lmaotrigine/my-cool-tool",
		Desc:     "A cool tool",
		License:  "MIT",
		Bins:     []string{"my-cool-tool", "mct"},
		Mans:     []config.Manpage{{Section: 1, Path: "doc/my-cool-tool.1"}},
		Deps: []config.Dependency{
			{Name: "git"},
			{Name: "fzf", Kind: config.DependencyOptional},
		},
		Completions: []config.Completion{
			{Shell: "fish", Path: "completions/my-cool-tool.fish"},
			{Shell: "zsh", Path: "completions/_my-cool-tool"},
		},
	}

	got, err := Render(Input{Formula: f, Version: "1.3.0", Archives: testArchives()})
	require.NoError(t, err)

	want := `# frozen_string_literal: true

# A cool tool
class MyCoolTool < Formula
  desc "A cool tool"
  homepage "https://github.com/lmaotrigine/my-cool-tool"
  version "1.3.0"
  license "MIT"

  depends_on "git"
  depends_on "fzf" => :optional
  if OS.mac?
    on_intel do
      url "https://example.com/mac-intel.tar.xz"
      sha256 "bb"
    end
    on_arm do
      url "https://example.com/mac-arm.tar.xz"
      sha256 "aa"
    end
  elsif OS.linux?
    on_intel do
      url "https://example.com/linux-intel.tar.xz"
      sha256 "dd"
    end
    on_arm do
      url "https://example.com/linux-arm.tar.xz"
      sha256 "cc"
    end
  end

  def install
    bin.install "my-cool-tool"
    bin.install "mct"
    man1.install "doc/my-cool-tool.1"
    fish_completion.install "completions/my-cool-tool.fish"
    zsh_completion.install "completions/_my-cool-tool"
  end
end
`
	assert.Equal(t, want, got)
}

func TestRenderEmptyBlocks(t *testing.T) {
	f := config.Formula{Repo: "o/tool", Homepage: "h", Desc: "d", License: "MIT"}

	got, err := Render(Input{Formula: f, Version: "0.1.0", Archives: testArchives()})
	require.NoError(t, err)

	assert.Contains(t, got, "  license \"MIT\"\n\n  if OS.mac?\n")
	assert.Contains(t, got, "  def install\n  end\nend\n")
	assert.NotContains(t, got, "depends_on")
	assert.NotContains(t, got, "\n\n\n")
}

func TestRenderVersionRoundTrip(t *testing.T) {
	f := config.Formula{Repo: "o/tool", Homepage: "h", Desc: "d", License: "MIT", Bins: []string{"tool"}}

	for _, version := range []string{"1.3.0", "2024.01.02", "0.0.1-rc.1"} {
		got, err := Render(Input{Formula: f, Version: version, Archives: testArchives()})
		require.NoError(t, err)

		var line string
		for _, l := range strings.Split(got, "\n") {
			if strings.HasPrefix(strings.TrimSpace(l), "version") {
				line = l
				break
			}
		}
		parts := strings.Split(line, `"`)
		require.GreaterOrEqual(t, len(parts), 2)
		assert.Equal(t, version, parts[1])
	}
}

func TestRenderIncompleteArchives(t *testing.T) {
	archives := testArchives()
	archives.LinuxARM.SHA256 = ""

	_, err := Render(Input{Formula: config.Formula{Repo: "o/tool"}, Version: "1.0.0", Archives: archives})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aarch64-unknown-linux-musl")

	_, err = Render(Input{Formula: config.Formula{Repo: "o/tool"}, Archives: testArchives()})
	assert.Error(t, err)
}

func TestArchivesSet(t *testing.T) {
	var a Archives
	for i, target := range platform.All {
		require.NoError(t, a.Set(target, Artifact{URL: target.String(), SHA256: strings.Repeat("f", i+1)}))
	}
	require.NoError(t, a.Complete())
	assert.Equal(t, "aarch64-apple-darwin", a.MacARM.URL)
	assert.Equal(t, "x86_64-unknown-linux-musl", a.LinuxIntel.URL)

	assert.Error(t, a.Set(platform.Target("riscv64-unknown-linux-gnu"), Artifact{}))
}

func TestClassName(t *testing.T) {
	tests := map[string]string{
		"my-cool-tool": "MyCoolTool",
		"ripgrep":      "Ripgrep",
		"foo_bar.baz":  "FooBarBaz",
		"HTTPie":       "Httpie",
		"--lead--":     "Lead",
		"tool2":        "Tool2",
		"x-2d":         "X2d",
	}
	for in, want := range tests {
		assert.Equal(t, want, ClassName(in), in)
	}
}

func TestDirectives(t *testing.T) {
	assert.Equal(t, `"foo"`, DependencyDirective(config.Dependency{Name: "foo"}))
	assert.Equal(t, `"foo" => :optional`, DependencyDirective(config.Dependency{Name: "foo", Kind: config.DependencyOptional}))
	assert.Equal(t, `"foo" => :recommended`, DependencyDirective(config.Dependency{Name: "foo", Kind: config.DependencyRecommended}))

	assert.Equal(t, `man1.install "doc/tool.1"`, ManpageDirective(config.Manpage{Section: 1, Path: "doc/tool.1"}))
	assert.Equal(t, `fish_completion.install "c/tool.fish"`, CompletionDirective(config.Completion{Shell: "fish", Path: "c/tool.fish"}))
}

func TestDirectivesFromParsedDeclarations(t *testing.T) {
	m, err := config.ParseManpage("doc/tool.1")
	require.NoError(t, err)
	assert.Equal(t, `man1.install "doc/tool.1"`, ManpageDirective(m))

	c, err := config.ParseCompletion("completions/_tool")
	require.NoError(t, err)
	assert.Equal(t, `zsh_completion.install "completions/_tool"`, CompletionDirective(c))
}
