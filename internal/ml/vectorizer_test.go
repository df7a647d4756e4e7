package ml

import (
	"testing"

	"github.com/Veraticus/finsight/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{name: "unigrams and bigrams", doc: "ZOMATO ORDER", want: []string{"zomato", "order", "zomato order"}},
		{name: "single word", doc: "SIP", want: []string{"sip"}},
		{name: "one letter words dropped", doc: "A B UBER", want: []string{"uber"}},
		{name: "empty", doc: "", want: nil},
		{name: "punctuation splits", doc: "REV-UPI/REFUND", want: []string{"rev", "upi", "refund", "rev upi", "upi refund"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.doc))
		})
	}
}

func TestVectorizer(t *testing.T) {
	v := NewVectorizer()
	v.Fit([]string{"ZOMATO ORDER", "UBER TRIP"})

	assert.Equal(t, 6, v.Len())
	assert.Equal(t, []string{"zomato", "order"}, v.Transform("ZOMATO PIZZA ORDER"))
	assert.Empty(t, v.Transform("NOTHING KNOWN"))

	again := NewVectorizer()
	again.Fit([]string{"UBER TRIP", "ZOMATO ORDER"})
	assert.Equal(t, v.Vocabulary, again.Vocabulary)
}

func TestFingerprint(t *testing.T) {
	a := []model.FeedbackSample{{Description: "X", Category: "Y"}}
	b := []model.FeedbackSample{{Description: "X", Category: "Z"}}

	assert.Equal(t, Fingerprint(a), Fingerprint(a))
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
	assert.Len(t, Fingerprint(nil), 32)
}
