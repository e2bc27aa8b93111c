package topic

import "github.com/kode4food/courier/topic"

// readCondition is triggered while its Reader has buffered data
type readCondition struct {
	reader *reader
}

func (c *readCondition) Reader() topic.Reader {
	return c.reader
}

func (c *readCondition) Triggered() bool {
	return c.reader.hasData()
}
