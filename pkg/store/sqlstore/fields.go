package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-assetform/pkg/model"
)

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) queryFields(ctx context.Context, query, ownerID string) ([]model.FieldDescriptor, error) {
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: fields of %q: %w", ownerID, err)
	}
	defer rows.Close()

	fields := []model.FieldDescriptor{}
	for rows.Next() {
		field, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: fields of %q: %w", ownerID, err)
	}
	return fields, nil
}

func scanField(row scanner) (model.FieldDescriptor, error) {
	var (
		field           model.FieldDescriptor
		fieldType       string
		defaultValue    sql.NullString
		options         sql.NullString
		validationRules sql.NullString
	)
	err := row.Scan(
		&field.ID, &field.FieldKey, &field.Label, &fieldType,
		&field.IsRequired, &field.IsReadonly, &field.IsVisible, &field.IsSystemField,
		&defaultValue, &field.HelpText, &field.Placeholder, &options, &validationRules,
		&field.SortOrder, &field.ColumnSpan, &field.Section, &field.Tab,
	)
	if err != nil {
		return model.FieldDescriptor{}, fmt.Errorf("sqlstore: scan field: %w", err)
	}
	field.FieldType = model.FieldType(fieldType)
	if defaultValue.Valid {
		value := defaultValue.String
		field.DefaultValue = &value
	}
	if options.Valid && options.String != "" {
		field.Options = json.RawMessage(options.String)
	}
	if validationRules.Valid && validationRules.String != "" {
		field.ValidationRules = json.RawMessage(validationRules.String)
	}
	return field, nil
}

func scanForm(row scanner) (model.FormDefinition, error) {
	var (
		form   model.FormDefinition
		status string
	)
	err := row.Scan(&form.ID, &form.Name, &form.Description, &form.AssetTypeID, &form.Version, &form.IsPublished, &status)
	if err != nil {
		return model.FormDefinition{}, err
	}
	form.Status = model.LifecycleStatus(status)
	return form, nil
}

func replaceFields(ctx context.Context, tx *sql.Tx, deleteQuery, insertQuery, ownerID string, fields []model.FieldDescriptor) error {
	if _, err := tx.ExecContext(ctx, deleteQuery, ownerID); err != nil {
		return fmt.Errorf("sqlstore: clear fields of %q: %w", ownerID, err)
	}
	for position, field := range fields {
		id := field.ID
		if id == "" {
			id = fmt.Sprintf("%s-%s-%d", ownerID, field.FieldKey, position)
		}
		if _, err := tx.ExecContext(ctx, insertQuery,
			ownerID, id, field.FieldKey, field.Label, string(field.FieldType),
			field.IsRequired, field.IsReadonly, field.IsVisible, field.IsSystemField,
			nullableString(field.DefaultValue), field.HelpText, field.Placeholder,
			nullableRaw(field.Options), nullableRaw(field.ValidationRules),
			field.SortOrder, field.ColumnSpan, field.Section, field.Tab, position,
		); err != nil {
			return fmt.Errorf("sqlstore: insert field %q of %q: %w", field.FieldKey, ownerID, err)
		}
	}
	return nil
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullableRaw(raw json.RawMessage) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
