package mapping

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"superPayroll/internal/model"
)

func TestFlowStatus(t *testing.T) {
	huge, _ := new(big.Int).SetString("39614081257132168796771975167", 10)

	cases := []struct {
		name string
		rate *big.Int
		want model.StreamStatus
	}{
		{name: "zero", rate: big.NewInt(0), want: model.StreamTerminated},
		{name: "nil", rate: nil, want: model.StreamTerminated},
		{name: "positive", rate: big.NewInt(1000), want: model.StreamUpdated},
		{name: "negative", rate: big.NewInt(-5), want: model.StreamUpdated},
		{name: "int96 max", rate: huge, want: model.StreamUpdated},
		{name: "int96 min", rate: new(big.Int).Neg(new(big.Int).Add(huge, big.NewInt(1))), want: model.StreamUpdated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FlowStatus(tc.rate))
		})
	}
}
