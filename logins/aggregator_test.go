package logins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AggregatorTestSuite struct {
	suite.Suite
}

func (self *AggregatorTestSuite) TestMostCommonIsStable() {
	table := NewFrequencyTable()
	for _, key := range []string{"c", "a", "b", "a", "b", "d"} {
		table.Increment(key)
	}

	assert.Equal(self.T(), []KeyCount{
		{"a", 2}, {"b", 2}, {"c", 1}, {"d", 1},
	}, table.MostCommon(0))

	assert.Equal(self.T(), []KeyCount{{"a", 2}}, table.MostCommon(1))
	assert.Equal(self.T(), 4, len(table.MostCommon(10)))

	// Insertion order is kept even after later increments.
	assert.Equal(self.T(), []KeyCount{
		{"c", 1}, {"a", 2}, {"b", 2}, {"d", 1},
	}, table.Items())
}

func (self *AggregatorTestSuite) TestLeastCommon() {
	table := NewFrequencyTable()
	_, ok := table.LeastCommon()
	assert.False(self.T(), ok)

	for _, key := range []string{"x", "y", "x", "z", "y"} {
		table.Increment(key)
	}

	least, ok := table.LeastCommon()
	require.True(self.T(), ok)
	assert.Equal(self.T(), KeyCount{"z", 1}, least)

	table.Increment("z")
	table.Increment("w")
	least, _ = table.LeastCommon()
	assert.Equal(self.T(), KeyCount{"w", 1}, least)
}

func (self *AggregatorTestSuite) TestNoNormalization() {
	table := NewFrequencyTable()
	for _, key := range []string{"Admin", "admin", " admin", "admin"} {
		table.Increment(key)
	}
	assert.Equal(self.T(), 3, table.Len())
	assert.Equal(self.T(), 2, table.Count("admin"))
	assert.Equal(self.T(), 1, table.Count("Admin"))
	assert.Equal(self.T(), 0, table.Count("nobody"))
}

func (self *AggregatorTestSuite) TestTotalsMatchRecords() {
	agg := NewAggregator()
	records := []*LogonFailureRecord{
		record("admin", "10.0.0.5", "%%2313", "0xc000006a"),
		record("bob", "10.0.0.5", "%%2313", "0xc0000064"),
		record("admin", "10.0.0.9", "%%2304", "0xc000006a"),
	}
	for _, r := range records {
		agg.Observe(r)
	}

	assert.Equal(self.T(), len(records), agg.Count)
	for _, table := range []*FrequencyTable{
		agg.Users, agg.SourceIPs, agg.FailureReasons, agg.SubStatuses} {
		assert.Equal(self.T(), len(records), table.Total())

		sum := 0
		for _, item := range table.Items() {
			sum += item.Count
		}
		assert.Equal(self.T(), len(records), sum)
	}
}

// Two users failing from one address.
func (self *AggregatorTestSuite) TestSharedSourceAddress() {
	agg := NewAggregator()
	agg.Observe(record("admin", "10.0.0.5", "%%2313", "0xc000006a"))
	agg.Observe(record("bob", "10.0.0.5", "%%2313", "0xc000006a"))

	assert.Equal(self.T(), 2, agg.SourceIPs.Count("10.0.0.5"))
	assert.Equal(self.T(), 1, agg.Users.Count("admin"))
	assert.Equal(self.T(), 1, agg.Users.Count("bob"))
}

func TestAggregator(t *testing.T) {
	suite.Run(t, &AggregatorTestSuite{})
}
