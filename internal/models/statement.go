package models

// StatementData is the validated result of one successful extraction.
// Ownership transfers to the caller; the engine keeps no reference to it.
type StatementData struct {
	Key           string        `json:"key"`
	AccountNumber string        `json:"accountNumber"`
	Transactions  []Transaction `json:"transactions"`
	// Filename is set post-hoc by the caller that knows the source file.
	Filename string `json:"filename,omitempty"`
}

// Field names accepted by the field-selectable exports.
const (
	FieldDate          = "date"
	FieldDateIndex     = "date_index"
	FieldDescription   = "description"
	FieldAmount        = "amount"
	FieldBalance       = "balance"
	FieldKey           = "key"
	FieldFilename      = "filename"
	FieldAccountNumber = "account_number"
)

// DefaultExportFields is the field set exports use when the caller does
// not choose one.
var DefaultExportFields = []string{FieldDate, FieldDescription, FieldAmount, FieldBalance}

// ValidExportField reports whether name is an exportable field.
func ValidExportField(name string) bool {
	switch name {
	case FieldDate, FieldDateIndex, FieldDescription, FieldAmount, FieldBalance,
		FieldKey, FieldFilename, FieldAccountNumber:
		return true
	}
	return false
}
