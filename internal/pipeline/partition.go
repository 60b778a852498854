package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gyeh/dischargeprep/internal/model"
	"github.com/gyeh/dischargeprep/internal/normalize"
	"github.com/gyeh/dischargeprep/internal/tabular"
)

// MissingReferralFile receives the whole table when it has no referral column.
const MissingReferralFile = "all_encaminhado_missing.csv"

// Group is the set of rows sharing one normalized referral.
type Group struct {
	Key      string
	FileName string
	Rows     [][]string
}

// Partition groups rows by normalized referral. Groups are returned in key
// order; rows keep their table order and are not modified. ok is false when
// the table has no referral column.
func Partition(t *model.Table, rules normalize.Rules) (groups []Group, ok bool) {
	col := -1
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), "encaminhado") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}

	byKey := make(map[string]*Group)
	for _, row := range t.Rows {
		key := rules.ReferralKey(field(row, col))
		g, found := byKey[key]
		if !found {
			g = &Group{Key: key}
			byKey[key] = g
		}
		g.Rows = append(g.Rows, row)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	used := make(map[string]int, len(keys))
	for _, k := range keys {
		g := byKey[k]
		g.FileName = groupFileName(k, used)
		groups = append(groups, *g)
	}
	return groups, true
}

// groupFileName sanitizes a key into "encaminhado__<key>.csv". Distinct keys
// that sanitize to the same name get a numeric suffix.
func groupFileName(key string, used map[string]int) string {
	safe := key
	if key == normalize.EmptyReferral {
		safe = ""
	}
	safe = normalize.SafeName(safe, "vazio")

	name := "encaminhado__" + safe
	lower := strings.ToLower(name)
	used[lower]++
	if n := used[lower]; n > 1 {
		name += "_" + strconv.Itoa(n)
	}
	return name + ".csv"
}

// WritePartitions writes one CSV per referral group into dir and returns the
// paths written. Without a referral column the whole table goes to
// MissingReferralFile.
func WritePartitions(t *model.Table, dir string, rules normalize.Rules, log zerolog.Logger) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	groups, ok := Partition(t, rules)
	if !ok {
		path := filepath.Join(dir, MissingReferralFile)
		log.Info().Str("file", MissingReferralFile).Msg("referral column not found, writing single partition")
		if err := tabular.WriteTable(path, t); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	paths := make([]string, 0, len(groups))
	for _, g := range groups {
		path := filepath.Join(dir, g.FileName)
		out := &model.Table{Source: t.Source, Header: t.Header, Rows: g.Rows}
		if err := tabular.WriteTable(path, out); err != nil {
			return paths, fmt.Errorf("write group %q: %w", g.Key, err)
		}
		log.Debug().Str("group", g.Key).Str("file", g.FileName).Int("rows", len(g.Rows)).Msg("partition written")
		paths = append(paths, path)
	}
	return paths, nil
}
