package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
)

// StructToCsvHeader takes a struct type and returns a slice of strings representing the CSV header.
// It uses the `csv` tag on struct fields to determine the header name; fields tagged "-" are skipped.
// If a field doesn't have a `csv` tag, the field name is used.
func StructToCsvHeader(t reflect.Type) []string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	var headers []string
	for i := 0; i < t.NumField(); i++ {
		if name, ok := headerName(t.Field(i)); ok {
			headers = append(headers, name)
		}
	}
	return headers
}

// WriteToCsvFile writes the given data to a CSV file at filePath, creating or truncating it.
func WriteToCsvFile[T any](filePath string, data []T) error {
	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	if err := WriteCsv(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteCsv writes a header row derived from T followed by one row per item.
// Slices are joined with a semicolon (;) and nil pointers become empty cells.
func WriteCsv[T any](w io.Writer, data []T) error {
	headers := StructToCsvHeader(reflect.TypeOf((*T)(nil)).Elem())

	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, item := range data {
		v := reflect.ValueOf(item)
		// If item is a pointer, get the value it points to
		if v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		if v.Kind() != reflect.Struct {
			return fmt.Errorf("data must be a slice of structs")
		}

		row := make([]string, 0, len(headers))
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if _, ok := headerName(t.Field(i)); !ok {
				continue
			}
			row = append(row, cellValue(v.Field(i)))
		}

		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func headerName(field reflect.StructField) (string, bool) {
	if !field.IsExported() {
		return "", false
	}
	switch tag := field.Tag.Get("csv"); tag {
	case "-":
		return "", false
	case "":
		return field.Name, true
	default:
		return tag, true
	}
}

func cellValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return ""
		}
		return cellValue(v.Elem())
	case reflect.Slice:
		// Join slice elements with semicolon
		values := make([]string, v.Len())
		for j := range values {
			values[j] = fmt.Sprintf("%v", v.Index(j).Interface())
		}
		return strings.Join(values, ";")
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
