package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"

	"github.com/optdev/iot-monsys/pkg/types"
)

func buildCondition(conditions ...ConditionFunc) Condition {
	c := &Condition{}
	for _, condition := range conditions {
		c = condition(c)
	}
	return *c
}

func TestEmptyConditionRendersTrue(t *testing.T) {
	is := is.New(t)

	c := buildCondition()

	is.Equal(c.Where(), "TRUE")
	is.Equal(c.WhereReadings(), "TRUE")
	is.Equal(len(c.NamedArgs()), 0)
}

func TestDeviceConditions(t *testing.T) {
	is := is.New(t)

	c := buildCondition(
		WithDeviceID("dev-1"),
		WithStatus(types.DeviceStatusActive, types.DeviceStatusInactive),
		WithSearch("kitchen"),
	)

	where := c.Where()
	is.True(strings.Contains(where, "device_id = @device_id"))
	is.True(strings.Contains(where, "status = ANY(@statuses)"))
	is.True(strings.Contains(where, "ILIKE @search"))

	args := c.NamedArgs()
	is.Equal(args["device_id"], "dev-1")
	is.Equal(args["search"], "%kitchen%")
	is.Equal(args["statuses"], []string{"active", "inactive"})
}

func TestSeenBeforeCoversNeverSeenDevices(t *testing.T) {
	is := is.New(t)

	c := buildCondition(WithSeenBefore(time.Now()))

	is.True(strings.Contains(c.Where(), "last_data_received IS NULL OR last_data_received < @seen_before"))
}

func TestReadingConditions(t *testing.T) {
	is := is.New(t)

	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)

	c := buildCondition(
		WithDeviceID("dev-1"),
		WithTypes([]string{"temperature"}),
		WithTimeRange(since, until),
	)

	where := c.WhereReadings()
	is.True(strings.Contains(where, "device_id = @device_id"))
	is.True(strings.Contains(where, "type = ANY(@types)"))
	is.True(strings.Contains(where, "time >= @since"))
	is.True(strings.Contains(where, "time <= @until"))

	args := c.NamedArgs()
	is.Equal(args["since"], since)
	is.Equal(args["until"], until)
}

func TestPagingDefaults(t *testing.T) {
	is := is.New(t)

	c := buildCondition()
	is.Equal(c.Offset(), 0)
	is.Equal(c.Limit(), 100)

	c = buildCondition(WithOffset(20), WithLimit(10))
	is.Equal(c.Offset(), 20)
	is.Equal(c.Limit(), 10)
}

func TestSorting(t *testing.T) {
	is := is.New(t)

	c := buildCondition()
	is.Equal(c.SortBy(), "device_id")
	is.Equal(c.SortOrder(), "ASC")

	c = buildCondition(WithSortBy("name"), WithSortDesc(true))
	is.Equal(c.SortBy(), "data ->> 'name'")
	is.Equal(c.SortOrder(), "DESC")

	c = buildCondition(WithSortBy("LastDataReceived"))
	is.Equal(c.SortBy(), "last_data_received")
}

func TestSortByOnlyAcceptsKnownColumns(t *testing.T) {
	is := is.New(t)

	c := buildCondition(WithSortBy("name; DROP TABLE devices; --"))
	is.Equal(c.SortBy(), "device_id")

	c = buildCondition(WithSortBy("modified_on"))
	is.Equal(c.SortBy(), "device_id")
}
