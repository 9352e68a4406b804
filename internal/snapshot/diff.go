package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Lines flattens v into sorted "path: value" lines. Nested keys are joined
// with dots and array elements are indexed, e.g. "env.PORT" or "roles[0]".
// A nil v yields no lines.
func Lines(v any) ([]string, error) {
	if IsNil(v) {
		return nil, nil
	}
	doc, err := normalize(v)
	if err != nil {
		return nil, fmt.Errorf("canonical lines: %w", err)
	}

	flattened := map[string]string{}
	if err := flatten("", doc, flattened); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(flattened))
	for key := range flattened {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", key, flattened[key]))
	}
	return lines, nil
}

func flatten(prefix string, value any, acc map[string]string) error {
	switch typed := value.(type) {
	case map[string]any:
		if len(typed) == 0 {
			if prefix != "" {
				acc[prefix] = "{}"
			}
			return nil
		}
		for key, item := range typed {
			next := key
			if prefix != "" {
				next = prefix + "." + key
			}
			if err := flatten(next, item, acc); err != nil {
				return err
			}
		}
	case []any:
		if len(typed) == 0 {
			if prefix != "" {
				acc[prefix] = "[]"
			}
			return nil
		}
		for idx, item := range typed {
			if err := flatten(fmt.Sprintf("%s[%d]", prefix, idx), item, acc); err != nil {
				return err
			}
		}
	case nil:
		if prefix != "" {
			acc[prefix] = "null"
		}
	default:
		if prefix == "" {
			return fmt.Errorf("canonical lines: value %v has no field name", typed)
		}
		encoded, err := json.Marshal(typed)
		if err != nil {
			acc[prefix] = fmt.Sprintf("%v", typed)
		} else {
			acc[prefix] = string(encoded)
		}
	}
	return nil
}

// Diff renders a unified diff from base to target. Unchanged lines are kept
// as context.
func Diff(baseLabel string, base []string, targetLabel string, target []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", baseLabel)
	fmt.Fprintf(&b, "+++ %s\n", targetLabel)
	fmt.Fprintf(&b, "@@ -%s +%s @@\n", hunkRange(len(base)), hunkRange(len(target)))
	for _, op := range diffLines(base, target) {
		b.WriteString(op.prefix)
		b.WriteString(op.line)
		b.WriteString("\n")
	}
	return b.String()
}

// hunkRange formats one side of a hunk header. An empty side starts at
// line 0.
func hunkRange(n int) string {
	if n == 0 {
		return "0,0"
	}
	return fmt.Sprintf("1,%d", n)
}

type diffOp struct {
	prefix string
	line   string
}

// diffLines computes a line diff from the longest common subsequence table.
func diffLines(base, target []string) []diffOp {
	m, n := len(base), len(target)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case base[i] == target[j]:
				dp[i][j] = dp[i+1][j+1] + 1
			case dp[i+1][j] >= dp[i][j+1]:
				dp[i][j] = dp[i+1][j]
			default:
				dp[i][j] = dp[i][j+1]
			}
		}
	}

	ops := make([]diffOp, 0, m+n)
	i, j := 0, 0
	for i < m && j < n {
		switch {
		case base[i] == target[j]:
			ops = append(ops, diffOp{" ", base[i]})
			i++
			j++
		case dp[i+1][j] >= dp[i][j+1]:
			ops = append(ops, diffOp{"-", base[i]})
			i++
		default:
			ops = append(ops, diffOp{"+", target[j]})
			j++
		}
	}
	for ; i < m; i++ {
		ops = append(ops, diffOp{"-", base[i]})
	}
	for ; j < n; j++ {
		ops = append(ops, diffOp{"+", target[j]})
	}
	return ops
}
