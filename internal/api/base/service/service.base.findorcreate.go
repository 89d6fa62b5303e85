package basesvc

import (
	"errors"

	"github.com/oFelixJpedro/connectflow-pro-sub003/internal/common"
)

// FindOrCreate chạy flow tìm-trước-tạo-sau: chỉ gọi create khi find trả
// ErrNotFound. Lỗi khác (Mongo chập chờn, timeout) được trả nguyên vẹn —
// tạo bản ghi khi chưa chắc nó vắng mặt sẽ sinh duplicate.
func FindOrCreate[T any](find func() (T, error), create func() (T, error)) (T, error) {
	result, err := find()
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		var zero T
		return zero, err
	}
	return create()
}
