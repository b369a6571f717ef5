package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/klauspost/compress/zstd"

	"voxelshapes.ai/internal/shapecache"
)

type traceSummary struct {
	Cell        string
	Derivations int
	Empty       int
	Errors      int
	Total       time.Duration
	Max         time.Duration
}

func traceCmd(args []string) {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	cell := fs.String("cell", "", "cell filter (optional)")
	_ = fs.Parse(args)

	sums, err := readTrace(filepath.Join(*dataDir, "trace"), strings.TrimSpace(*cell))
	if err != nil {
		fatal("read trace:", err)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CELL\tDERIVED\tEMPTY\tERRORS\tAVG\tMAX")
	for _, s := range sums {
		avg := s.Total / time.Duration(s.Derivations)
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n", s.Cell, s.Derivations, s.Empty, s.Errors, avg, s.Max)
	}
	_ = tw.Flush()
}

// readTrace summarizes every derive-*.jsonl.zst file under dir by cell.
func readTrace(dir, cell string) ([]traceSummary, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "derive-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	byCell := map[string]*traceSummary{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		dec, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		sc := bufio.NewScanner(dec)
		sc.Buffer(make([]byte, 64*1024), 8*1024*1024)
		for sc.Scan() {
			var d shapecache.Derivation
			if err := json.Unmarshal(sc.Bytes(), &d); err != nil {
				dec.Close()
				_ = f.Close()
				return nil, fmt.Errorf("%s: unmarshal: %w", name, err)
			}
			if cell != "" && d.Cell != cell {
				continue
			}
			s := byCell[d.Cell]
			if s == nil {
				s = &traceSummary{Cell: d.Cell}
				byCell[d.Cell] = s
			}
			s.Derivations++
			s.Total += d.Duration
			if d.Duration > s.Max {
				s.Max = d.Duration
			}
			if d.Empty {
				s.Empty++
			}
			if d.Err != "" {
				s.Errors++
			}
		}
		err = sc.Err()
		dec.Close()
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	out := make([]traceSummary, 0, len(byCell))
	for _, s := range byCell {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cell < out[j].Cell })
	return out, nil
}
