package models

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/buildsmart/erp_backend/utils"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestRandomInvoiceNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^INV-\d{4}$`)
	gen := RandomInvoiceNumber{}

	for i := 0; i < 1000; i++ {
		id := gen.Next()
		if !pattern.MatchString(id) {
			t.Fatalf("invoice number %q does not match INV-####", id)
		}
		suffix, err := strconv.Atoi(strings.TrimPrefix(id, "INV-"))
		if err != nil {
			t.Fatalf("invoice number %q has a non-numeric suffix", id)
		}
		if suffix < 1000 || suffix > 9999 {
			t.Fatalf("invoice number suffix %d outside [1000, 9999]", suffix)
		}
	}
}

// sequenceNumbers feeds predetermined identifiers to the retry loop.
type sequenceNumbers struct {
	ids []string
	i   int
}

func (s *sequenceNumbers) Next() string {
	id := s.ids[s.i%len(s.ids)]
	s.i++
	return id
}

func TestInvoiceNumberStrategyIsSwappable(t *testing.T) {
	orig := invoiceNumbers
	defer func() { invoiceNumbers = orig }()

	invoiceNumbers = &sequenceNumbers{ids: []string{"INV-1111", "INV-2222"}}
	if got := invoiceNumbers.Next(); got != "INV-1111" {
		t.Errorf("expected INV-1111, got %s", got)
	}
	if got := invoiceNumbers.Next(); got != "INV-2222" {
		t.Errorf("expected INV-2222, got %s", got)
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"mysql duplicate entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'INV-1234' for key 'PRIMARY'"}, true},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"mysql other error", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, false},
		{"plain error", errors.New("connection refused"), false},
		{"nil-ish not found", gorm.ErrRecordNotFound, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isDuplicateKeyError(tc.err); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCreateInvoiceRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []int64{0, -500} {
		input := &NewInvoice{
			Vendor:    "Steel Supplies Co.",
			Amount:    decimal.NewFromInt(amount),
			ProjectId: 1,
		}
		_, err := CreateInvoice(context.Background(), input)
		if err == nil {
			t.Fatalf("amount %d: expected an error, got nil", amount)
		}
		if !errors.Is(err, utils.ErrorValidation) {
			t.Errorf("amount %d: expected a validation error, got %v", amount, err)
		}
	}
}
