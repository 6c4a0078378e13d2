package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// jsonNotFound is returned instead of an error when the input is missing, so
// deploy scripts can print the result as-is.
const jsonNotFound = "JSON file not found"

type envPair struct {
	key   string
	value string
}

// JSONToEnv writes the top-level keys of a JSON object as KEY=value lines.
// With a branch, only keys starting with BRANCH_ (case-insensitive) are kept
// and the prefix is stripped.
func JSONToEnv(jsonPath, envPath, branch string) (string, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			return jsonNotFound, nil
		}
		return "", err
	}

	pairs, err := decodeFlatObject(data)
	if err != nil {
		return "", fmt.Errorf("Error parsing %s: %w", jsonPath, err)
	}

	prefix := ""
	if branch != "" {
		prefix = strings.ToUpper(branch) + "_"
	}

	var envs strings.Builder
	for _, pair := range pairs {
		key := pair.key
		if prefix != "" {
			stripped, ok := stripBranchPrefix(key, prefix)
			if !ok {
				continue
			}
			key = stripped
		}
		envs.WriteString(key + "=" + pair.value + "\n")
	}

	if err := os.WriteFile(envPath, []byte(envs.String()), 0o644); err != nil {
		return "", err
	}

	return envPath, nil
}

// stripBranchPrefix matches the upper-cased prefix against the leading runes
// of key. Upper-casing can change a rune's byte width, so the cut is made by
// rune count rather than by len(prefix).
func stripBranchPrefix(key, prefix string) (string, bool) {
	rest := key
	for i := utf8.RuneCountInString(prefix); i > 0; i-- {
		if rest == "" {
			return "", false
		}
		_, size := utf8.DecodeRuneInString(rest)
		rest = rest[size:]
	}

	head := key[:len(key)-len(rest)]
	if strings.ToUpper(head) != prefix {
		return "", false
	}

	return rest, true
}

// decodeFlatObject keeps the document order of the keys.
func decodeFlatObject(data []byte) ([]envPair, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	openTok, err := decoder.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := openTok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	pairs := make([]envPair, 0)
	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return nil, err
		}
		value, err := envValue(raw)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, envPair{key: key, value: value})
	}

	if _, err := decoder.Token(); err != nil {
		return nil, err
	}

	return pairs, nil
}

func envValue(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return "", nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		err := json.Unmarshal(trimmed, &s)
		return s, err
	}

	var compacted bytes.Buffer
	if err := json.Compact(&compacted, trimmed); err != nil {
		return "", err
	}
	return compacted.String(), nil
}
