package configs

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// checker validates one dotted field path of a config against its `enum` and
// `range` tags. range bounds an int value or a string length.
type checker struct {
	conf     any
	field    string
	fieldObj reflect.StructField
	val      any
}

func newChecker(conf any, field string) *checker {
	return &checker{
		conf:  conf,
		field: field,
	}
}

func (c *checker) check() (err error) {
	if c.conf == nil {
		return errors.Errorf("nil config")
	}

	if c.fieldObj, c.val, err = c.getFieldValue(reflect.ValueOf(c.conf), c.field); err != nil {
		return err
	}

	if err := c.checkEnum(); err != nil {
		return err
	}

	return c.checkRange()
}

func (c *checker) checkRange() error {
	var rang, found = c.fieldObj.Tag.Lookup("range")
	if !found || len(rang) < 1 {
		return nil
	}

	var lower, upper, err = parseRange(rang)
	if err != nil {
		return err
	}

	var n int
	switch kind := c.fieldObj.Type.Kind(); kind {
	case reflect.Int:
		n = c.val.(int) //nolint
	case reflect.String:
		n = len(c.val.(string)) //nolint
	default:
		return errors.Errorf("range on unsupported kind %s", kind)
	}

	if n < lower || n > upper {
		return errors.Errorf("%s is %d, it should be within [%d, %d]", c.fieldObj.Name, n, lower, upper)
	}

	return nil
}

func parseRange(rang string) (lower, upper int, err error) {
	var lo, hi, found = strings.Cut(rang, "-")
	if !found {
		return 0, 0, errors.Errorf("invalid range tag %q", rang)
	}
	if lower, err = strconv.Atoi(lo); err != nil {
		return 0, 0, errors.Wrapf(err, "invalid range tag %q", rang)
	}
	if upper, err = strconv.Atoi(hi); err != nil {
		return 0, 0, errors.Wrapf(err, "invalid range tag %q", rang)
	}
	return lower, upper, nil
}

func (c *checker) checkEnum() error {
	var enum, found = c.fieldObj.Tag.Lookup("enum")
	if !found {
		return nil
	}

	var val = fmt.Sprintf("%v", c.val)
	for _, part := range strings.Split(enum, ",") {
		if val == strings.TrimSpace(part) {
			return nil
		}
	}

	return errors.Errorf("invalid %s %q, expect one of %q", c.fieldObj.Name, val, enum)
}

func (c *checker) getFieldValue(valObj reflect.Value, field string) (reflect.StructField, any, error) {
	var fieldObj reflect.StructField

	var elem = valObj
	if elem.Kind() == reflect.Ptr {
		elem = elem.Elem()
	}
	if !elem.IsValid() || elem.Kind() != reflect.Struct {
		return fieldObj, nil, errors.Errorf("%s is not a struct", field)
	}

	var name, rest, _ = strings.Cut(field, ".")
	for i := 0; i < elem.NumField(); i++ {
		fieldObj = elem.Type().Field(i)
		if !strings.EqualFold(fieldObj.Name, name) {
			continue
		}

		var val = elem.Field(i)
		if len(rest) < 1 {
			return fieldObj, val.Interface(), nil
		}

		return c.getFieldValue(val, rest)
	}

	return fieldObj, nil, errors.Errorf("no such field: %s", field)
}
