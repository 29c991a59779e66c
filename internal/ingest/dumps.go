package ingest

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/labforms/coc-extractor/internal/pipeline"
)

var rePageNum = regexp.MustCompile(`page[_-]?(\d+)`)

// LoadUnits reads every .txt dump in dir as one processing unit, ordered by
// page. The page number comes from the filename when present (for example
// debug_ai_response_page_2.txt); unnumbered files get sequential pages
// after the last numbered one.
func LoadUnits(dir string) ([]pipeline.Unit, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var units []pipeline.Unit
	next := 1
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		page := next
		if m := rePageNum.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
				page = n
			}
		}
		if page >= next {
			next = page + 1
		}
		units = append(units, pipeline.Unit{Page: page, Raw: string(raw)})
	}

	sort.SliceStable(units, func(i, j int) bool { return units[i].Page < units[j].Page })
	return units, nil
}
