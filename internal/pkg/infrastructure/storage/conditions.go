package storage

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/optdev/iot-monsys/pkg/types"
)

type ConditionFunc func(*Condition) *Condition

type Condition struct {
	DeviceID string
	Statuses []string
	Types    []string
	Search   string

	SeenBefore time.Time
	Since      time.Time
	Until      time.Time

	sortBy    string
	sortOrder string

	offset *int
	limit  *int
}

func (c Condition) NamedArgs() pgx.NamedArgs {
	args := pgx.NamedArgs{}

	if c.DeviceID != "" {
		args["device_id"] = c.DeviceID
	}
	if len(c.Statuses) > 0 {
		args["statuses"] = c.Statuses
	}
	if len(c.Types) > 0 {
		args["types"] = c.Types
	}
	if c.Search != "" {
		args["search"] = "%" + c.Search + "%"
	}
	if !c.SeenBefore.IsZero() {
		args["seen_before"] = c.SeenBefore
	}
	if !c.Since.IsZero() {
		args["since"] = c.Since
	}
	if !c.Until.IsZero() {
		args["until"] = c.Until
	}
	if c.offset != nil {
		args["offset"] = *c.offset
	}
	if c.limit != nil {
		args["limit"] = *c.limit
	}

	return args
}

// Where renders the condition for the devices table.
func (c Condition) Where() string {
	parts := []string{}

	if c.DeviceID != "" {
		parts = append(parts, "device_id = @device_id")
	}
	if len(c.Statuses) > 0 {
		parts = append(parts, "status = ANY(@statuses)")
	}
	if len(c.Types) > 0 {
		parts = append(parts, "data ->> 'type' = ANY(@types)")
	}
	if c.Search != "" {
		parts = append(parts, "data ->> 'name' ILIKE @search")
	}
	if !c.SeenBefore.IsZero() {
		parts = append(parts, "(last_data_received IS NULL OR last_data_received < @seen_before)")
	}

	if len(parts) == 0 {
		return "TRUE"
	}

	return strings.Join(parts, " AND ")
}

// WhereReadings renders the condition for the readings table.
func (c Condition) WhereReadings() string {
	parts := []string{}

	if c.DeviceID != "" {
		parts = append(parts, "device_id = @device_id")
	}
	if len(c.Types) > 0 {
		parts = append(parts, "type = ANY(@types)")
	}
	if !c.Since.IsZero() {
		parts = append(parts, "time >= @since")
	}
	if !c.Until.IsZero() {
		parts = append(parts, "time <= @until")
	}

	if len(parts) == 0 {
		return "TRUE"
	}

	return strings.Join(parts, " AND ")
}

func (c Condition) SortBy() string {
	if c.sortBy == "" {
		return "device_id"
	}
	return c.sortBy
}

func (c Condition) SortOrder() string {
	if c.sortOrder == "" {
		return "ASC"
	}
	return c.sortOrder
}

func (c Condition) Offset() int {
	if c.offset == nil {
		return 0
	}
	return *c.offset
}

func (c Condition) Limit() int {
	if c.limit == nil {
		return 100
	}
	return *c.limit
}

func WithDeviceID(deviceID string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.DeviceID = deviceID
		return c
	}
}

func WithStatus(statuses ...types.DeviceStatus) ConditionFunc {
	return func(c *Condition) *Condition {
		for _, s := range statuses {
			c.Statuses = append(c.Statuses, string(s))
		}
		return c
	}
}

func WithTypes(sensorTypes []string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.Types = sensorTypes
		return c
	}
}

func WithSearch(search string) ConditionFunc {
	return func(c *Condition) *Condition {
		c.Search = search
		return c
	}
}

func WithSeenBefore(t time.Time) ConditionFunc {
	return func(c *Condition) *Condition {
		c.SeenBefore = t
		return c
	}
}

func WithTimeRange(since, until time.Time) ConditionFunc {
	return func(c *Condition) *Condition {
		c.Since = since
		c.Until = until
		return c
	}
}

func WithOffset(offset int) ConditionFunc {
	return func(c *Condition) *Condition {
		c.offset = &offset
		return c
	}
}

func WithLimit(limit int) ConditionFunc {
	return func(c *Condition) *Condition {
		c.limit = &limit
		return c
	}
}

func WithSortBy(sortBy string) ConditionFunc {
	return func(c *Condition) *Condition {

		// only known column names may end up in an ORDER BY clause
		switch strings.ToLower(sortBy) {
		case "deviceid":
			fallthrough
		case "device_id":
			c.sortBy = "device_id"
		case "name":
			c.sortBy = "data ->> 'name'"
		case "type":
			c.sortBy = "data ->> 'type'"
		case "status":
			c.sortBy = "status"
		case "lastdatareceived":
			fallthrough
		case "last_data_received":
			c.sortBy = "last_data_received"
		}

		return c
	}
}

func WithSortDesc(desc bool) ConditionFunc {
	return func(c *Condition) *Condition {
		if desc {
			c.sortOrder = "DESC"
		} else {
			c.sortOrder = "ASC"
		}
		return c
	}
}
