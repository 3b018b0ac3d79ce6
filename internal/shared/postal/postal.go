// Package postal normalizes Brazilian postal codes (CEP) and tax documents
// (CPF/CNPJ) before they reach the shipping provider.
package postal

// SanitizeCEP strips every non-digit character and truncates the result to
// 8 digits. The returned value is a valid CEP only if exactly 8 digits
// remain; use ValidCEP to check.
func SanitizeCEP(value string) string {
	digits := onlyDigits(value)
	if len(digits) > 8 {
		digits = digits[:8]
	}
	return digits
}

// ValidCEP reports whether value sanitizes to exactly 8 digits.
func ValidCEP(value string) bool {
	return len(SanitizeCEP(value)) == 8
}

// SanitizeDocument strips every non-digit character from a CPF/CNPJ.
func SanitizeDocument(value string) string {
	return onlyDigits(value)
}

// DocumentKind classifies a sanitized tax document by length.
type DocumentKind string

const (
	DocumentInvalid DocumentKind = ""
	DocumentCPF     DocumentKind = "cpf"  // individual, 11 digits
	DocumentCNPJ    DocumentKind = "cnpj" // organization, 14 digits
)

// ClassifyDocument returns the kind of an already sanitized document. Any
// length other than 11 or 14 digits is invalid.
func ClassifyDocument(digits string) DocumentKind {
	switch len(digits) {
	case 11:
		return DocumentCPF
	case 14:
		return DocumentCNPJ
	default:
		return DocumentInvalid
	}
}

// ValidDocument reports whether value sanitizes to a CPF or CNPJ.
func ValidDocument(value string) bool {
	return ClassifyDocument(SanitizeDocument(value)) != DocumentInvalid
}

func onlyDigits(value string) string {
	out := make([]byte, 0, len(value))
	for i := 0; i < len(value); i++ {
		if value[i] >= '0' && value[i] <= '9' {
			out = append(out, value[i])
		}
	}
	return string(out)
}
