package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type OrderTestSuite struct {
	suite.Suite
}

func (s *OrderTestSuite) TestMarshalParsedDate() {
	data, err := json.Marshal(Order{ID: 1, Description: "a", Status: OrderStatusPending,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	s.Require().NoError(err)
	s.JSONEq(`{"id":1,"description":"a","status":"pending","created_at":"2024-01-01T00:00:00Z"}`, string(data))
}

func (s *OrderTestSuite) TestMarshalKeepsUnparsedDate() {
	data, err := json.Marshal(Order{ID: 2, Description: "b", Status: OrderStatusPending, CreatedAtText: "yesterday"})
	s.Require().NoError(err)
	s.JSONEq(`{"id":2,"description":"b","status":"pending","created_at":"yesterday"}`, string(data))
}

func (s *OrderTestSuite) TestMarshalInsideSlice() {
	data, err := json.Marshal([]Order{{ID: 3, CreatedAtText: "soon"}})
	s.Require().NoError(err)
	s.Contains(string(data), `"created_at":"soon"`)
	s.NotContains(string(data), "CreatedAtText")
}

func TestOrderTestSuite(t *testing.T) {
	suite.Run(t, new(OrderTestSuite))
}
