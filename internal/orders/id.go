package orders

import (
	"fmt"
	"math/rand"
	"time"
)

const orderIDPrefix = "SOUV"

// NewOrderID mints a storefront order id: SOUV-<unix ms>-<6 random digits>.
func NewOrderID() string {
	return newOrderIDAt(time.Now(), rand.Intn(1_000_000))
}

func newOrderIDAt(now time.Time, rnd int) string {
	if rnd < 0 {
		rnd = -rnd
	}
	return fmt.Sprintf("%s-%d-%06d", orderIDPrefix, now.UnixMilli(), rnd%1_000_000)
}
