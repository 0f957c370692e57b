// Copyright (c) 2025 The Undine developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package exitbus

import (
	"github.com/pkg/errors"

	"github.com/undinefi/undine/record"
	"github.com/undinefi/undine/undine"
)

// ErrNotDelivered means no delivery has been recorded for the request.
var ErrNotDelivered = errors.New("exitbus: exit request was never delivered")

// Deliveries answers when an exit request reached its node operator.
type Deliveries interface {
	DeliveryTimestamp(request ExitRequest) (uint64, error)
}

var deliveryPos = undine.BytesToBytes32([]byte("exitbus.delivery"))

// DeliveryLog persists delivery timestamps keyed by the hash of the packed
// request. The first delivery wins, later redeliveries of an identical
// request keep the original timestamp so penalty windows cannot be pushed
// back by resubmitting.
type DeliveryLog struct {
	byRequest *record.Mapping[undine.Bytes32, uint64]
}

func NewDeliveryLog(ctx *record.Context) *DeliveryLog {
	return &DeliveryLog{
		byRequest: record.NewMapping[undine.Bytes32, uint64](ctx, deliveryPos),
	}
}

func requestHash(request ExitRequest) (undine.Bytes32, error) {
	packed, err := request.Encode()
	if err != nil {
		return undine.Bytes32{}, err
	}
	return undine.Blake2b(packed[:]), nil
}

// RecordDelivery stores the delivery timestamp, keeping an earlier one.
func (l *DeliveryLog) RecordDelivery(request ExitRequest, timestamp uint64) error {
	key, err := requestHash(request)
	if err != nil {
		return err
	}
	existing, err := l.byRequest.Get(key)
	if err != nil {
		return err
	}
	if existing != 0 && existing <= timestamp {
		return nil
	}
	return l.byRequest.Set(key, timestamp)
}

// DeliveryTimestamp implements Deliveries.
func (l *DeliveryLog) DeliveryTimestamp(request ExitRequest) (uint64, error) {
	key, err := requestHash(request)
	if err != nil {
		return 0, err
	}
	ts, err := l.byRequest.Get(key)
	if err != nil {
		return 0, err
	}
	if ts == 0 {
		return 0, errors.Wrapf(ErrNotDelivered, "validator %d", request.ValidatorIndex)
	}
	return ts, nil
}
