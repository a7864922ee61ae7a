// Package docnum fixes chapter numbering in the rendered handbook site.
//
// The site generator numbers every chapter page "1". Renumber rewrites the
// section-header numbers from each page's position in file-name order, adds
// chapter numbers to the table-of-contents entries, and points the site index
// redirect at the landing chapter. Substitutions are literal; a rule that
// matches nothing is a no-op.
package docnum

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// IndexFile is the site entry page. It is excluded from chapter numbering.
const IndexFile = "index.html"

const (
	headerPrefix = `<span class="header-section-number">`
	menuPrefix   = `<span class="menu-text">`
	menuSuffix   = `</span>`
)

// chapters lists the table-of-contents titles in chapter order.
var chapters = []string{
	"Reproducible Spatial Analysis",
	"Spatial Queries and Geometric Operations",
	"Point Pattern Analysis",
	"Spatial Autocorrelation",
	"Spatial Models",
	"Raster Data Analysis",
	"Geodemographic Classification",
	"Accessibility Analysis",
	"Beyond the Choropleth",
	"Complex Visualisations",
	"Data Sources",
}

// Rule is a literal text substitution.
type Rule struct {
	Old string
	New string
}

// FileResult records the substitutions made in one file.
type FileResult struct {
	Path     string
	Sequence int
	Headers  int
	TOC      int
}

// Result summarizes a Renumber run.
type Result struct {
	Files     []FileResult
	Redirects int
}

// HeaderRule renumbers the section-header placeholder for the chapter at seq.
func HeaderRule(seq int) Rule {
	return Rule{Old: headerPrefix + "1", New: headerPrefix + strconv.Itoa(seq)}
}

// TOCRules prefixes each chapter title in the table of contents with its number.
func TOCRules() []Rule {
	rules := make([]Rule, len(chapters))
	for i, title := range chapters {
		rules[i] = Rule{
			Old: menuPrefix + title + menuSuffix,
			New: menuPrefix + strconv.Itoa(i+1) + " " + title + menuSuffix,
		}
	}
	return rules
}

// RedirectRule retargets the index redirect at the landing chapter.
func RedirectRule() Rule {
	return Rule{Old: "08-network.html", New: "00-index.html"}
}

// Apply runs rules in order, each replacing every occurrence, and returns the
// rewritten content with the total number of replacements.
func Apply(content string, rules []Rule) (string, int) {
	total := 0
	for _, r := range rules {
		n := strings.Count(content, r.Old)
		if n == 0 {
			continue
		}
		content = strings.ReplaceAll(content, r.Old, r.New)
		total += n
	}
	return content, total
}

// ChapterFiles returns the .html files directly under dir, minus the index
// page and dotfiles, sorted by name.
func ChapterFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "docnum: read dir %s", dir)
	}

	var files []string
	hasIndex := false
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".html") {
			continue
		}
		if name == IndexFile {
			hasIndex = true
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	if !hasIndex {
		return nil, eris.Errorf("docnum: %s not found in %s", IndexFile, dir)
	}

	sort.Strings(files)
	return files, nil
}

// Renumber rewrites every chapter page in dir and then the index redirect.
// Files are overwritten in place.
func Renumber(dir string) (*Result, error) {
	log := zap.L().With(zap.String("component", "docnum"), zap.String("dir", dir))

	files, err := ChapterFiles(dir)
	if err != nil {
		return nil, err
	}

	toc := TOCRules()
	res := &Result{Files: make([]FileResult, 0, len(files))}
	for seq, path := range files {
		fr := FileResult{Path: path, Sequence: seq}
		err := rewrite(path, func(content string) string {
			content, fr.Headers = Apply(content, []Rule{HeaderRule(seq)})
			content, fr.TOC = Apply(content, toc)
			return content
		})
		if err != nil {
			return nil, err
		}

		if fr.Headers == 0 {
			log.Debug("no section header placeholder", zap.String("file", path))
		}
		if fr.TOC == 0 {
			log.Debug("no table of contents entries matched", zap.String("file", path))
		}
		res.Files = append(res.Files, fr)
	}

	indexPath := filepath.Join(dir, IndexFile)
	err = rewrite(indexPath, func(content string) string {
		content, res.Redirects = Apply(content, []Rule{RedirectRule()})
		return content
	})
	if err != nil {
		return nil, err
	}
	if res.Redirects == 0 {
		log.Debug("index redirect target not found", zap.String("file", indexPath))
	}

	log.Info("chapters renumbered",
		zap.Int("files", len(res.Files)),
		zap.Int("redirects", res.Redirects),
	)
	return res, nil
}

// rewrite replaces the file content with fn(content), keeping its permissions.
func rewrite(path string, fn func(string) string) error {
	info, err := os.Stat(path)
	if err != nil {
		return eris.Wrapf(err, "docnum: stat %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "docnum: read %s", path)
	}

	if err := os.WriteFile(path, []byte(fn(string(data))), info.Mode().Perm()); err != nil {
		return eris.Wrapf(err, "docnum: write %s", path)
	}
	return nil
}
