package labels

import "strings"

// Sentence is a proof-line template. Placeholders are {proof}, {driver},
// {customer} and {date}. DateClause is appended only when a date is present.
type Sentence struct {
	Body       string
	DateClause string
}

// Compose fills s. The result is the final display string; shaping, if any,
// must be applied to it as a whole.
func (s Sentence) Compose(proof, driver, customer, date string) string {
	out := s.Body
	if date != "" {
		out += s.DateClause
	}
	r := strings.NewReplacer(
		"{proof}", proof,
		"{driver}", driver,
		"{customer}", customer,
		"{date}", date,
	)
	return r.Replace(out)
}

// FullProofLine is the proof sentence of full delivery proofs. The date clause
// is part of the body because the full proof always prints it.
var FullProofLine = Sentence{
	Body: "فيما يلي إثبات التسليم المنفَّذ من قبل السائق {driver} إلى العميل {customer} بتاريخ {date}",
}

var partialLines = map[Language]Sentence{
	Arabic: {
		Body:       "فيما يلي {proof} المنفَّذ من قبل السائق {driver} إلى العميل {customer}",
		DateClause: " بتاريخ {date}",
	},
	English: {
		Body:       "Below is the {proof} performed by driver {driver} to customer {customer}",
		DateClause: " on {date}",
	},
}

var partialProofs = map[Language][2]string{
	Arabic:  {ModeDelivery: "إثبات التسليم الجزئي", ModeReturn: "إثبات الإرجاع الجزئي"},
	English: {ModeDelivery: "partial delivery", ModeReturn: "partial return"},
}

// PartialProofLine composes the partial-proof sentence for lang and m.
func PartialProofLine(lang Language, m Mode, driver, customer, date string) string {
	return partialLines[lang].Compose(partialProofs[lang][m], driver, customer, date)
}
