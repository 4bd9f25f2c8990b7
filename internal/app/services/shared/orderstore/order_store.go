// Package orderstore holds the PaymentOrderRepository implementations. Every
// driver applies status changes as a compare-and-set on the stored status, so
// concurrent pollers, callbacks and the expiry worker cannot overwrite a
// transition that already happened.
package orderstore

import "errors"

var ErrDuplicateOrder = errors.New("payment order already exists")
