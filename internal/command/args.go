package command

import (
	"fmt"
	"strings"

	"github.com/mattn/go-shellwords"
)

// splitArgs делит строку по правилам shell: двойные и одинарные кавычки,
// экранирование через \.
// `add "buy milk" desc="2 litres"` -> [add, buy milk, desc=2 litres].
func splitArgs(line string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(line)
	if err != nil {
		return nil, fmt.Errorf("%w: %v (quote values, escape quotes with \\)", ErrUsage, err)
	}
	// Parser останавливается на ; & | < > вне кавычек, хвост строки потерялся бы.
	// Position считается в рунах.
	if p.Position >= 0 {
		rest := string([]rune(line)[p.Position:])
		return nil, fmt.Errorf("%w: unexpected %q, put it in quotes", ErrUsage, rest)
	}
	return args, nil
}

// splitKeyValues отделяет аргументы вида key=value от обычных слов.
func splitKeyValues(args []string) ([]string, map[string]string) {
	var words []string
	kv := make(map[string]string)
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok && k != "" {
			kv[strings.ToLower(k)] = v
			continue
		}
		words = append(words, a)
	}
	return words, kv
}
