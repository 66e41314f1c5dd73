package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MRZData holds the fields parsed from a machine-readable zone per the
// ICAO 9303 TD3 layout (passport booklets).
type MRZData struct {
	DocumentNumber string
	Nationality    string
	BirthDate      string // YYYY-MM-DD
	ExpiryDate     string // YYYY-MM-DD
	Surname        string
	GivenNames     string
}

var (
	mrzNameLine = regexp.MustCompile(`^P[<A-Z]([A-Z]{3})([A-Z<]+)$`)
	mrzDataLine = regexp.MustCompile(`^[A-Z0-9<]{30,}$`)
	mrzFiller   = regexp.MustCompile(`<+`)
)

// MRZ scans OCR text for machine-readable-zone lines and parses them.
// Malformed or absent MRZ lines yield zero-value fields, never an error:
// extractors report "not found" rather than guessing.
func MRZ(text string) MRZData {
	var out MRZData

	for _, line := range strings.Split(text, "\n") {
		line = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(line), " ", ""))
		if len(line) < 30 {
			continue
		}

		if m := mrzNameLine.FindStringSubmatch(line); m != nil {
			surname, given := parseMRZNames(m[2])
			if out.Surname == "" {
				out.Surname = surname
				out.GivenNames = given
			}
			continue
		}

		if mrzDataLine.MatchString(line) && !strings.HasPrefix(line, "P<") {
			parseMRZDataLine(line, &out)
		}
	}

	return out
}

// parseMRZDataLine reads the fixed-offset fields of a TD3 second line:
// document number [0:9], nationality [10:13], birth date [13:19],
// expiry date [21:27].
func parseMRZDataLine(line string, out *MRZData) {
	if len(line) < 28 {
		return
	}

	if out.DocumentNumber == "" {
		num := strings.Trim(mrzFiller.ReplaceAllString(line[0:9], ""), "<")
		if num != "" {
			out.DocumentNumber = num
		}
	}

	if out.Nationality == "" {
		nat := strings.Trim(line[10:13], "<")
		if len(nat) == 3 && !strings.ContainsAny(nat, "0123456789") {
			out.Nationality = nat
		}
	}

	if out.BirthDate == "" {
		out.BirthDate = decodeMRZDate(line[13:19], 30)
	}
	if out.ExpiryDate == "" {
		out.ExpiryDate = decodeMRZDate(line[21:27], 50)
	}
}

// decodeMRZDate turns a YYMMDD run into YYYY-MM-DD. Two-digit years at or
// below the pivot are 2000s, the rest 1900s (pivot 30 for birth dates,
// 50 for expiry dates).
func decodeMRZDate(s string, pivot int) string {
	if len(s) != 6 {
		return ""
	}
	yy, err := strconv.Atoi(s[0:2])
	if err != nil {
		return ""
	}
	mm, err := strconv.Atoi(s[2:4])
	if err != nil || mm < 1 || mm > 12 {
		return ""
	}
	dd, err := strconv.Atoi(s[4:6])
	if err != nil || dd < 1 || dd > 31 {
		return ""
	}

	century := 1900
	if yy <= pivot {
		century = 2000
	}
	return fmt.Sprintf("%04d-%02d-%02d", century+yy, mm, dd)
}

// parseMRZNames splits the SURNAME<<GIVEN<NAMES block of the first line.
func parseMRZNames(block string) (surname, given string) {
	block = strings.Trim(block, "<")
	parts := strings.SplitN(block, "<<", 2)
	surname = strings.TrimSpace(mrzFiller.ReplaceAllString(parts[0], " "))
	if len(parts) == 2 {
		given = strings.TrimSpace(mrzFiller.ReplaceAllString(parts[1], " "))
	}
	return surname, given
}
