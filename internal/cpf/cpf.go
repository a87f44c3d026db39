// Package cpf validates and formats Brazilian CPF numbers (Cadastro de
// Pessoas Físicas).
//
// A CPF is 11 decimal digits. The last two are check digits computed from
// weighted sums of the digits before them:
//
//	529.982.247-25
//	└─────────┘ └┘
//	   base     check digits
//
// Every function here is pure: no I/O, no shared state, safe to call from
// any number of goroutines.
package cpf

import "strings"

// Length is the number of digits in a CPF, check digits included.
const Length = 11

// baseLength is the number of digits the check digits are computed from.
const baseLength = Length - 2

// ─────────────────────────────────────────────────────────────────────────────
// IsValid reports whether input is a well-formed CPF with matching check
// digits.
//
// Formatting characters are ignored: "529.982.247-25" and "52998224725"
// give the same answer. Anything that does not leave exactly 11 digits, or
// leaves 11 identical digits, is invalid.
//
// There is no error return. Wrong length, a repdigit and a checksum
// mismatch all collapse to false.
// ─────────────────────────────────────────────────────────────────────────────
func IsValid(input string) bool {
	digits := Strip(input)
	if len(digits) != Length {
		return false
	}

	// "00000000000", "11111111111", ... satisfy the checksum by construction.
	if isRepdigit(digits) {
		return false
	}

	var d [Length]int
	for i := 0; i < Length; i++ {
		d[i] = int(digits[i] - '0')
	}

	first := checkDigit(d[:baseLength])
	second := checkDigit(d[:baseLength+1])

	return d[9] == first && d[10] == second
}

// CheckDigits returns the two check digits for a nine-digit CPF base.
// The boolean is false when base does not strip down to exactly 9 digits.
func CheckDigits(base string) (string, bool) {
	digits := Strip(base)
	if len(digits) != baseLength {
		return "", false
	}

	d := make([]int, 0, baseLength+1)
	for i := 0; i < baseLength; i++ {
		d = append(d, int(digits[i]-'0'))
	}

	first := checkDigit(d)
	d = append(d, first)
	second := checkDigit(d)

	return string([]byte{byte('0' + first), byte('0' + second)}), true
}

// Strip returns the ASCII digits of input in their original order.
func Strip(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	for i := 0; i < len(input); i++ {
		if c := input[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// Format groups the digits of input into the display pattern ddd.ddd.ddd-dd.
//
// Partial input is masked as far as it goes, which is what a form field
// mask needs while the user is still typing:
//
//	Format("5299")            == "529.9"
//	Format("529982247")       == "529.982.247"
//	Format("52998224725")     == "529.982.247-25"
//	Format("529982247251234") == "529.982.247-25"  // truncated to 11 digits
// ─────────────────────────────────────────────────────────────────────────────
func Format(input string) string {
	digits := Strip(input)
	if len(digits) > Length {
		digits = digits[:Length]
	}

	var b strings.Builder
	b.Grow(Length + 3)
	for i := 0; i < len(digits); i++ {
		switch i {
		case 3, 6:
			b.WriteByte('.')
		case 9:
			b.WriteByte('-')
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// checkDigit computes one check digit over d. The weights run from
// len(d)+1 down to 2, so the same function yields the first digit over the
// nine base digits and the second over base plus first check digit.
func checkDigit(d []int) int {
	sum := 0
	weight := len(d) + 1
	for _, v := range d {
		sum += v * weight
		weight--
	}

	digit := 11 - sum%11
	if digit > 9 {
		return 0
	}
	return digit
}

func isRepdigit(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
