package objval

// ISO8601 is the layout of the timestamps persisted to a tenant store and rendered into S3 listing responses; UTC
// with millisecond precision.
const ISO8601 = "2006-01-02T15:04:05.000Z"
