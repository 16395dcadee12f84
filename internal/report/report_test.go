package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/CageChen/nativefs/internal/layout"
	"github.com/CageChen/nativefs/internal/nativefs"
)

func TestMarkdownLoaded(t *testing.T) {
	st := nativefs.Status{
		Available:  true,
		Platform:   "windows/amd64 10.0",
		Library:    "nativefs64.dll",
		Dirs:       layout.Dirs{BinPath: `C:\ide\bin`},
		Candidates: []string{`C:\ide\bin\nativefs64.dll`, `C:\ide\bin\win\nativefs64.dll`},
		LoadedFrom: `C:\ide\bin\nativefs64.dll`,
	}

	md := Markdown(st)
	for _, want := range []string{
		"# " + Title,
		"| Available | yes |",
		"| Loaded from | `C:\\ide\\bin\\nativefs64.dll` |",
		"1. `C:\\ide\\bin\\nativefs64.dll` (loaded)",
		"2. `C:\\ide\\bin\\win\\nativefs64.dll`\n",
		"```json",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
	if strings.Contains(md, "## Search location") {
		t.Error("loaded report must not list the search location")
	}
}

func TestMarkdownNotFound(t *testing.T) {
	nf := &nativefs.NotFoundError{
		Library:  "nativefs64.dll",
		Searched: []string{"/ide/bin/nativefs64.dll"},
		Dir:      "/ide/bin",
		Listing:  []string{"README.txt", "idea.exe"},
	}
	st := nativefs.Status{
		Platform:   "windows/amd64 10.0",
		Library:    "nativefs64.dll",
		Candidates: nf.Searched,
		Err:        nf,
	}

	md := Markdown(st)
	for _, want := range []string{
		"| Available | no |",
		"| Reason | ",
		"## Search location",
		"Content of `/ide/bin`:",
		"```text\nREADME.txt\nidea.exe\n```",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}

func TestMarkdownUnsupported(t *testing.T) {
	md := Markdown(nativefs.Status{
		Platform: "linux/amd64",
		Library:  "nativefs64.so",
		Reason:   "a|b",
	})
	if !strings.Contains(md, "No candidate paths were searched.") {
		t.Errorf("expected empty candidate note:\n%s", md)
	}
	if !strings.Contains(md, `| Reason | a\|b |`) {
		t.Errorf("expected escaped reason:\n%s", md)
	}
}

func TestGenerate(t *testing.T) {
	rep, err := NewRenderer().Generate(nativefs.Status{
		Platform: "windows/amd64 10.0",
		Err:      errors.New("boom"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Title != Title {
		t.Errorf("title = %q", rep.Title)
	}
	if !strings.Contains(rep.HTML, "<table>") {
		t.Errorf("expected summary table:\n%s", rep.HTML)
	}
	if len(rep.TOC) < 3 {
		t.Errorf("toc = %+v", rep.TOC)
	}
}
