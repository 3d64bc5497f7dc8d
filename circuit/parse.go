package circuit

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/zne/errs"
)

const sitesDirective = "sites"

// Parse reads a sequence from its text form.
//
// Each non-empty line holds one operation: a name, an optional comma separated
// site list and an optional comma separated parameter list, e.g. "cx 0,1" or
// "rz 0 0.25". Text after '#' is ignored. An optional "sites N" line fixes the
// number of sites; otherwise it is inferred from the largest site used.
func Parse(text string) (Sequence, error) {
	return ParseReader(strings.NewReader(text))
}

// ParseReader is like Parse but reads from r.
func ParseReader(r io.Reader) (Sequence, error) {
	var (
		ops      []Operation
		numSites int
		lineNo   int
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if strings.EqualFold(fields[0], sitesDirective) {
			if len(fields) != 2 {
				return Sequence{}, fmt.Errorf("line %d: %w: sites directive needs one value", lineNo, errs.ErrInvalidOperation)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil || n <= 0 {
				return Sequence{}, fmt.Errorf("line %d: %w: bad site count %q", lineNo, errs.ErrInvalidOperation, fields[1])
			}
			numSites = n

			continue
		}

		op, err := parseOperation(fields)
		if err != nil {
			return Sequence{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return Sequence{}, err
	}

	return New(numSites, ops...)
}

func parseOperation(fields []string) (Operation, error) {
	if len(fields) > 3 {
		return Operation{}, fmt.Errorf("%w: too many fields in %q", errs.ErrInvalidOperation, strings.Join(fields, " "))
	}

	var (
		sites  []int
		params []float64
	)
	if len(fields) > 1 {
		for _, raw := range strings.Split(fields[1], ",") {
			site, err := strconv.Atoi(raw)
			if err != nil {
				return Operation{}, fmt.Errorf("%w: bad site %q", errs.ErrInvalidOperation, raw)
			}
			sites = append(sites, site)
		}
	}
	if len(fields) > 2 {
		for _, raw := range strings.Split(fields[2], ",") {
			p, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return Operation{}, fmt.Errorf("%w: bad parameter %q", errs.ErrInvalidOperation, raw)
			}
			params = append(params, p)
		}
	}

	return NewOperation(fields[0], sites, params...)
}

// Format renders seq in the form read by Parse, starting with a "sites N" line.
func Format(seq Sequence) string {
	var sb strings.Builder
	sb.WriteString(sitesDirective)
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(seq.numSites))
	sb.WriteByte('\n')
	for _, op := range seq.ops {
		sb.WriteString(op.String())
		sb.WriteByte('\n')
	}

	return sb.String()
}
