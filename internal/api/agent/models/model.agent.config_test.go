// Package models - Test chuỗi fallback của các giá trị pipeline trong AIAgentConfig.
package models

import "testing"

func TestBatchWindowSeconds_ChuoiFallback(t *testing.T) {
	cases := []struct {
		name              string
		configValue       int
		deploymentDefault int
		want              int
	}{
		{"config connection thắng tất cả", 120, 30, 120},
		{"config không set thì dùng default deployment", 0, 30, 30},
		{"không có gì set thì dùng 75", 0, 0, 75},
		{"giá trị âm coi như không set", -5, 30, 30},
	}
	for _, c := range cases {
		cfg := &AIAgentConfig{MessageBatchSeconds: c.configValue}
		if got := cfg.BatchWindowSeconds(c.deploymentDefault); got != c.want {
			t.Errorf("%s: BatchWindowSeconds(%d) = %d, muốn %d", c.name, c.deploymentDefault, got, c.want)
		}
	}
}

func TestSplitDelay_ChuoiFallback(t *testing.T) {
	cases := []struct {
		name              string
		configValue       float64
		deploymentDefault float64
		want              float64
	}{
		{"config connection thắng tất cả", 3.5, 1.5, 3.5},
		{"config không set thì dùng default deployment", 0, 1.5, 1.5},
		{"không có gì set thì dùng 2.0", 0, 0, 2.0},
	}
	for _, c := range cases {
		cfg := &AIAgentConfig{SplitDelaySeconds: c.configValue}
		if got := cfg.SplitDelay(c.deploymentDefault); got != c.want {
			t.Errorf("%s: SplitDelay(%v) = %v, muốn %v", c.name, c.deploymentDefault, got, c.want)
		}
	}
}
