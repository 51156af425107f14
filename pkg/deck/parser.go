package deck

import (
	"bufio"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrSyntax = errors.New("deck syntax error")

// LastNode in a NodeRef selects the last node of the region ("end").
const LastNode = -1

type NodeRef struct {
	Region string
	Node   int
}

func (r NodeRef) String() string {
	if r.Node == LastNode {
		return r.Region + ":end"
	}
	return fmt.Sprintf("%s:%d", r.Region, r.Node)
}

type RegionSpec struct {
	Name     string
	Material string
	Nodes    int
	Length   float64 // m
	Area     float64 // m^2
	Tl       bool    // Lattice temperature equation
	V0, V1   float64 // DC potential at the first and the last node
	Temp     float64 // DC lattice temperature, 0 selects the material's Tnom
}

type ElectrodeSpec struct {
	Name      string
	At        NodeRef
	Amplitude float64
}

type InterfaceSpec struct {
	A, B NodeRef
}

type Deck struct {
	Title      string
	Regions    []RegionSpec
	Interfaces []InterfaceSpec
	Electrodes []ElectrodeSpec
	HasAC      bool
	ACParam    struct {
		Sweep  string  // DEC, OCT, LIN
		Points int     // total number of points
		FStart float64 // start frequency
		FStop  float64 // stop frequency
	}
}

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var (
	valuePattern = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)((?i:meg)|[TGKkmunpf])?[a-zA-Z]*$`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// Parse reads a deck. The first line is the title, '*' starts a comment and
// a line starting with '+' continues the previous one.
func Parse(input string) (*Deck, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	deck := &Deck{}

	// Title or comment
	if scanner.Scan() {
		deck.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	var currentLine string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Inline comment
		if idx := strings.Index(line, "*"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if len(line) == 0 {
			continue
		}

		// Continuation
		if strings.HasPrefix(line, "+") {
			if currentLine == "" {
				return nil, fmt.Errorf("%w: continuation without a statement: %q", ErrSyntax, line)
			}
			currentLine += " " + strings.TrimSpace(strings.TrimPrefix(line, "+"))
			continue
		}

		if currentLine != "" {
			if err := parseLine(deck, currentLine); err != nil {
				return nil, err
			}
		}
		currentLine = line
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// Last line
	if currentLine != "" {
		if err := parseLine(deck, currentLine); err != nil {
			return nil, err
		}
	}

	return deck, nil
}

func parseLine(deck *Deck, line string) error {
	line = spacePattern.ReplaceAllString(line, " ")
	fields := strings.Fields(line)

	var err error
	switch strings.ToLower(fields[0]) {
	case ".region":
		err = parseRegion(deck, fields[1:])
	case ".interface":
		err = parseInterface(deck, fields[1:])
	case ".electrode":
		err = parseElectrode(deck, fields[1:])
	case ".ac":
		err = parseAC(deck, fields[1:])
	case ".end":
	default:
		err = fmt.Errorf("unsupported statement: %s", fields[0])
	}

	if err != nil && !errors.Is(err, ErrSyntax) {
		err = fmt.Errorf("%w: %q: %v", ErrSyntax, line, err)
	}
	return err
}

// splitParams separates positional fields from key=value pairs.
func splitParams(fields []string) ([]string, map[string]string) {
	var positional []string
	params := make(map[string]string)
	for _, f := range fields {
		if key, value, ok := strings.Cut(f, "="); ok {
			params[strings.ToLower(key)] = value
			continue
		}
		positional = append(positional, f)
	}
	return positional, params
}

func parseRegion(deck *Deck, fields []string) error {
	positional, params := splitParams(fields)
	if len(positional) != 2 {
		return fmt.Errorf("region needs a name and a material")
	}
	spec := RegionSpec{Name: positional[0], Material: positional[1]}
	for _, r := range deck.Regions {
		if r.Name == spec.Name {
			return fmt.Errorf("duplicate region: %s", spec.Name)
		}
	}

	var err error
	for key, value := range params {
		switch key {
		case "nodes":
			spec.Nodes, err = strconv.Atoi(value)
		case "length":
			spec.Length, err = ParseValue(value)
		case "area":
			spec.Area, err = ParseValue(value)
		case "tl":
			spec.Tl, err = parseSwitch(value)
		case "v0":
			spec.V0, err = ParseValue(value)
		case "v1":
			spec.V1, err = ParseValue(value)
		case "temp":
			spec.Temp, err = parseTemperature(value)
		default:
			return fmt.Errorf("unknown region parameter: %s", key)
		}
		if err != nil {
			return fmt.Errorf("invalid %s: %v", key, err)
		}
	}

	if spec.Nodes < 2 || spec.Length <= 0 || spec.Area <= 0 {
		return fmt.Errorf("region %s needs nodes>=2, length and area", spec.Name)
	}
	deck.Regions = append(deck.Regions, spec)
	return nil
}

func parseInterface(deck *Deck, fields []string) error {
	if len(fields) != 2 {
		return fmt.Errorf("interface needs two nodes")
	}
	a, err := parseNodeRef(fields[0])
	if err != nil {
		return err
	}
	b, err := parseNodeRef(fields[1])
	if err != nil {
		return err
	}
	deck.Interfaces = append(deck.Interfaces, InterfaceSpec{A: a, B: b})
	return nil
}

func parseElectrode(deck *Deck, fields []string) error {
	positional, params := splitParams(fields)
	if len(positional) != 1 {
		return fmt.Errorf("electrode needs one node")
	}
	at, err := parseNodeRef(positional[0])
	if err != nil {
		return err
	}

	spec := ElectrodeSpec{Name: fmt.Sprintf("E%d", len(deck.Electrodes)+1), At: at}
	for key, value := range params {
		switch key {
		case "amp":
			spec.Amplitude, err = ParseValue(value)
		case "name":
			spec.Name = value
		default:
			return fmt.Errorf("unknown electrode parameter: %s", key)
		}
		if err != nil {
			return fmt.Errorf("invalid %s: %v", key, err)
		}
	}

	deck.Electrodes = append(deck.Electrodes, spec)
	return nil
}

func parseAC(deck *Deck, fields []string) error {
	var err error
	if len(fields) < 4 {
		return fmt.Errorf("insufficient AC parameters, need sweep type, points, fstart, and fstop")
	}

	// DEC, OCT, LIN
	deck.ACParam.Sweep = strings.ToUpper(fields[0])
	if deck.ACParam.Sweep != "DEC" && deck.ACParam.Sweep != "OCT" && deck.ACParam.Sweep != "LIN" {
		return fmt.Errorf("invalid sweep type: %s", deck.ACParam.Sweep)
	}

	deck.ACParam.Points, err = strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("invalid points number: %v", err)
	}
	deck.ACParam.FStart, err = ParseValue(fields[2])
	if err != nil {
		return fmt.Errorf("invalid fstart: %v", err)
	}
	deck.ACParam.FStop, err = ParseValue(fields[3])
	if err != nil {
		return fmt.Errorf("invalid fstop: %v", err)
	}

	deck.HasAC = true
	return nil
}

func parseNodeRef(field string) (NodeRef, error) {
	name, node, ok := strings.Cut(field, ":")
	if !ok || name == "" {
		return NodeRef{}, fmt.Errorf("invalid node reference: %s", field)
	}
	if strings.EqualFold(node, "end") {
		return NodeRef{Region: name, Node: LastNode}, nil
	}
	id, err := strconv.Atoi(node)
	if err != nil || id < 0 {
		return NodeRef{}, fmt.Errorf("invalid node reference: %s", field)
	}
	return NodeRef{Region: name, Node: id}, nil
}

func parseSwitch(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a switch: %s", value)
}

// ParseValue parses a number with an optional SPICE scale suffix and unit,
// e.g. "10u", "1meg", "2.5mm".
// parseTemperature reads an absolute temperature in kelvin. A trailing K is
// the unit, not the kilo prefix, and no other suffix is accepted.
func parseTemperature(val string) (float64, error) {
	t, err := strconv.ParseFloat(strings.TrimSuffix(val, "K"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid temperature: %s", val)
	}
	if t <= 0 {
		return 0, fmt.Errorf("temperature must be positive: %s", val)
	}
	return t, nil
}

func ParseValue(val string) (float64, error) {
	matches := valuePattern.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	// factor
	factor := matches[2]
	if len(factor) == 3 {
		factor = strings.ToLower(factor)
	}
	if multiplier, ok := unitMap[factor]; ok {
		num *= multiplier
	}

	return num, nil
}
