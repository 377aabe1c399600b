package db

import (
	"errors"
	"reflect"
	"testing"

	"github.com/divreminder/divreminder/domain"
	"github.com/shopspring/decimal"
)

func TestDividendRepo_InsertDividend(t *testing.T) {
	t.Run("should store and read back a dividend", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		product := testProduct(t, repo, "TTE")
		want := testDividend(t, repo, product.ID, "2025-06-01", "0.79")

		got, err := repo.GetDividend(want.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		if !reflect.DeepEqual(want, got) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should reject a dividend for an unknown product", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		_, err := repo.InsertDividend(&domain.Dividend{ProductID: 77, Date: mustDate(t, "2025-06-01"), Amount: decimal.NewFromInt(1)})
		if err == nil {
			t.Fatalf("\nwanted:\nforeign key error\ngot:\nnil")
		}
	})
}

func TestDividendRepo_InsertDividends(t *testing.T) {
	t.Run("should insert nothing when one dividend fails", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		product := testProduct(t, repo, "TTE")
		batch := []*domain.Dividend{
			{ProductID: product.ID, Date: mustDate(t, "2025-06-01"), Amount: decimal.NewFromInt(1)},
			{ProductID: 999, Date: mustDate(t, "2025-07-01"), Amount: decimal.NewFromInt(1)},
		}

		if err := repo.InsertDividends(batch); err == nil {
			t.Fatalf("\nwanted:\nerror\ngot:\nnil")
		}

		got, err := repo.GetDividends()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", len(got))
		}
	})

	t.Run("should insert a batch", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		product := testProduct(t, repo, "TTE")
		batch := []*domain.Dividend{
			{ProductID: product.ID, Date: mustDate(t, "2025-06-01"), Amount: decimal.NewFromInt(1)},
			{ProductID: product.ID, Date: mustDate(t, "2025-09-01"), Amount: decimal.NewFromInt(2)},
		}

		if err := repo.InsertDividends(batch); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, err := repo.GetDividendsByProduct(product.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 2 {
			t.Fatalf("\nwanted:\n2\ngot:\n%d", len(got))
		}
	})
}

func TestDividendRepo_DateQueries(t *testing.T) {
	repo, teardown := setupTestDB(t)
	defer teardown()

	product := testProduct(t, repo, "TTE")
	past := testDividend(t, repo, product.ID, "2025-01-10", "0.5")
	today := testDividend(t, repo, product.ID, "2025-03-01", "0.6")
	soon := testDividend(t, repo, product.ID, "2025-03-08", "0.7")
	later := testDividend(t, repo, product.ID, "2025-03-09", "0.8")

	t.Run("should return dividends strictly after a day", func(t *testing.T) {
		got, err := repo.GetFutureDividends(mustDate(t, "2025-03-01"))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := []*domain.Dividend{soon, later}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should return dividends on or after a day", func(t *testing.T) {
		got, err := repo.GetDividendsSince(mustDate(t, "2025-03-01"))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := []*domain.Dividend{today, soon, later}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should include both ends of an upcoming window", func(t *testing.T) {
		got, err := repo.GetUpcomingDividends(mustDate(t, "2025-03-01"), mustDate(t, "2025-03-08"))
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := []*domain.Dividend{today, soon}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})

	t.Run("should list all dividends by date", func(t *testing.T) {
		got, err := repo.GetDividends()
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		want := []*domain.Dividend{past, today, soon, later}
		if !reflect.DeepEqual(want, got) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, got)
		}
	})
}

func TestDividendRepo_DividendExists(t *testing.T) {
	repo, teardown := setupTestDB(t)
	defer teardown()

	product := testProduct(t, repo, "TTE")
	testDividend(t, repo, product.ID, "2025-06-01", "0.79")

	tests := []struct {
		name   string
		date   string
		amount string
		want   bool
	}{
		{name: "should match the exact amount", date: "2025-06-01", amount: "0.79", want: true},
		{name: "should match an amount within a cent", date: "2025-06-01", amount: "0.795", want: true},
		{name: "should not match a cent away", date: "2025-06-01", amount: "0.81", want: false},
		{name: "should not match another date", date: "2025-06-02", amount: "0.79", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.DividendExists(product.ID, mustDate(t, tt.date), decimal.RequireFromString(tt.amount))
			if err != nil {
				t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
			}
			if got != tt.want {
				t.Fatalf("\nwanted:\n%v\ngot:\n%v", tt.want, got)
			}
		})
	}
}

func TestDividendRepo_UpdateAndDelete(t *testing.T) {
	t.Run("should update a dividend", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		product := testProduct(t, repo, "TTE")
		dividend := testDividend(t, repo, product.ID, "2025-06-01", "0.79")
		dividend.Amount = decimal.RequireFromString("0.85")
		dividend.Date = mustDate(t, "2025-06-15")

		if err := repo.UpdateDividend(dividend); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}

		got, err := repo.GetDividend(dividend.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if !reflect.DeepEqual(dividend, got) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", dividend, got)
		}
	})

	t.Run("should delete dividends one by one and per product", func(t *testing.T) {
		repo, teardown := setupTestDB(t)
		defer teardown()

		product := testProduct(t, repo, "TTE")
		first := testDividend(t, repo, product.ID, "2025-06-01", "0.79")
		testDividend(t, repo, product.ID, "2025-09-01", "0.79")
		testDividend(t, repo, product.ID, "2025-12-01", "0.79")

		if err := repo.DeleteDividend(first.ID); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if _, err := repo.GetDividend(first.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrNotFound, err)
		}
		if err := repo.DeleteDividend(first.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", domain.ErrNotFound, err)
		}

		if err := repo.DeleteDividendsByProduct(product.ID); err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		got, err := repo.GetDividendsByProduct(product.ID)
		if err != nil {
			t.Fatalf("\nwanted:\nnil\ngot:\n%v", err)
		}
		if len(got) != 0 {
			t.Fatalf("\nwanted:\n0\ngot:\n%d", len(got))
		}
	})
}
