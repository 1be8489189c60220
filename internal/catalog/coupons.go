package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CouponResult is the answer to a coupon check. An unknown code is a normal
// not-valid answer, not an error.
type CouponResult struct {
	Valid           bool
	DiscountPercent int
}

func (r *Repository) VerifyCoupon(ctx context.Context, code string) (CouponResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return CouponResult{}, nil
	}

	query := `SELECT discount_percent FROM coupons WHERE code = ?`

	var percent int
	err := r.db.QueryRowContext(ctx, query, code).Scan(&percent)
	if errors.Is(err, sql.ErrNoRows) {
		return CouponResult{}, nil
	}
	if err != nil {
		return CouponResult{}, fmt.Errorf("query coupon: %w", err)
	}

	return CouponResult{Valid: true, DiscountPercent: percent}, nil
}
