// Copyright (c) 2025 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package mapping

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Period is a date-based amount of time in years, months and days. The
// fields are independent and may carry different signs.
type Period struct {
	Years  int
	Months int
	Days   int
}

// IsZero reports whether all fields are zero.
func (p Period) IsZero() bool { return p == Period{} }

// String formats p as an ISO-8601 period such as "P1Y2M3D". The zero
// period is "P0D".
func (p Period) String() string {
	if p.IsZero() {
		return "P0D"
	}
	var b strings.Builder
	b.WriteByte('P')
	if p.Years != 0 {
		fmt.Fprintf(&b, "%dY", p.Years)
	}
	if p.Months != 0 {
		fmt.Fprintf(&b, "%dM", p.Months)
	}
	if p.Days != 0 {
		fmt.Fprintf(&b, "%dD", p.Days)
	}
	return b.String()
}

var _periodPattern = regexp.MustCompile(
	`(?i)^([-+]?)P(?:([-+]?[0-9]+)Y)?(?:([-+]?[0-9]+)M)?(?:([-+]?[0-9]+)W)?(?:([-+]?[0-9]+)D)?$`)

// ParsePeriod parses an ISO-8601 period of the form PnYnMnWnD. Weeks are
// folded into days. A leading minus sign negates every field.
func ParsePeriod(s string) (Period, error) {
	m := _periodPattern.FindStringSubmatch(s)
	if m == nil || (m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "") {
		return Period{}, fmt.Errorf("period %q is not in PnYnMnD form", s)
	}

	var fields [4]int
	for i, text := range m[2:] {
		if text == "" {
			continue
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return Period{}, fmt.Errorf("period %q: %v", s, err)
		}
		fields[i] = n
	}

	p := Period{Years: fields[0], Months: fields[1], Days: fields[2]*7 + fields[3]}
	if m[1] == "-" {
		p = Period{Years: -p.Years, Months: -p.Months, Days: -p.Days}
	}
	return p, nil
}
