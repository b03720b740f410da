package rotorset

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-rotorsim/rotorsim/pkg/perm"
)

// LoadExternalSet parses a serialised rotor set document and registers it
// under the name given in its [rotorset] header, overwriting any
// previously registered set of that name. This is how a genuine historical
// wiring table — for example the Typex Y-269 rotor set — replaces the
// built-in placeholder entries.
//
// The document is a sequence of bracketed sections:
//
//	[rotorset]
//	name = typex-y269
//	alphabet = ABCDEFGHIJKLMNOPQRSTUVWXYZ
//
//	[rotor <id>]
//	permutation = 4,0,17,...
//	notches = 3,9
//	displayname = Y-269 rotor A
func LoadExternalSet(doc string) (*Set, error) {
	sections, order, err := splitSections(doc)
	if err != nil {
		return nil, err
	}

	header, ok := sections["rotorset"]
	if !ok {
		return nil, fmt.Errorf("%w: missing [rotorset] header", ErrRotorSetFormat)
	}
	name := header["name"]
	if name == "" {
		return nil, fmt.Errorf("%w: [rotorset] section missing name", ErrRotorSetFormat)
	}
	alphabet := header["alphabet"]
	if alphabet == "" {
		alphabet = latin
	}

	s := newSet(name)
	for _, sectionName := range order {
		const prefix = "rotor "
		if !strings.HasPrefix(sectionName, prefix) {
			continue
		}
		id := strings.TrimSpace(strings.TrimPrefix(sectionName, prefix))
		fields := sections[sectionName]

		vec, err := parseIntCSV(fields["permutation"])
		if err != nil {
			return nil, fmt.Errorf("%w: rotor %s: %v", ErrRotorSetFormat, id, err)
		}
		p, err := perm.New(alphabet, vec)
		if err != nil {
			return nil, fmt.Errorf("%w: rotor %s: %v", ErrRotorSetFormat, id, err)
		}

		var notches []int
		if raw := fields["notches"]; raw != "" {
			notches, err = parseIntCSV(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: rotor %s notches: %v", ErrRotorSetFormat, id, err)
			}
		}

		displayName := fields["displayname"]
		if displayName == "" {
			displayName = id
		}
		s.add(id, p, notches, displayName)
	}

	register(s)
	return s, nil
}

func parseIntCSV(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	vec := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q: %w", p, err)
		}
		vec[i] = v
	}
	return vec, nil
}

// splitSections parses the bracketed "[section]\nkey = value" document
// shape shared by the rotor-set loader and the machine state codec.
func splitSections(doc string) (map[string]map[string]string, []string, error) {
	sections := make(map[string]map[string]string)
	var order []string
	var current string

	scanner := bufio.NewScanner(strings.NewReader(doc))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			if _, exists := sections[current]; !exists {
				sections[current] = make(map[string]string)
				order = append(order, current)
			}
			continue
		}
		if current == "" {
			return nil, nil, fmt.Errorf("%w: value outside of any section: %q", ErrRotorSetFormat, line)
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, nil, fmt.Errorf("%w: malformed line %q", ErrRotorSetFormat, line)
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		sections[current][key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrRotorSetFormat, err)
	}
	return sections, order, nil
}
