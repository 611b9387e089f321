package sqlstore

const fieldColumns = `id, field_key, label, field_type, is_required, is_readonly, is_visible,
	is_system_field, default_value, help_text, placeholder, options, validation_rules,
	sort_order, column_span, section, tab`

const fieldTableColumns = `
	id TEXT PRIMARY KEY,
	field_key TEXT NOT NULL,
	label TEXT NOT NULL DEFAULT '',
	field_type TEXT NOT NULL,
	is_required INTEGER NOT NULL DEFAULT 0,
	is_readonly INTEGER NOT NULL DEFAULT 0,
	is_visible INTEGER NOT NULL DEFAULT 1,
	is_system_field INTEGER NOT NULL DEFAULT 0,
	default_value TEXT,
	help_text TEXT NOT NULL DEFAULT '',
	placeholder TEXT NOT NULL DEFAULT '',
	options TEXT,
	validation_rules TEXT,
	sort_order INTEGER NOT NULL DEFAULT 0,
	column_span INTEGER NOT NULL DEFAULT 1,
	section TEXT NOT NULL DEFAULT '',
	tab TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0`

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS asset_types (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	icon TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'Active'
)`,
	`CREATE TABLE IF NOT EXISTS asset_type_fields (
	asset_type_id TEXT NOT NULL REFERENCES asset_types(id),` + fieldTableColumns + `
)`,
	`CREATE INDEX IF NOT EXISTS idx_asset_type_fields_owner ON asset_type_fields(asset_type_id, position)`,
	`CREATE TABLE IF NOT EXISTS form_definitions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	asset_type_id TEXT NOT NULL DEFAULT '',
	version INTEGER NOT NULL DEFAULT 1,
	is_published INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'Draft'
)`,
	`CREATE TABLE IF NOT EXISTS form_fields (
	form_id TEXT NOT NULL REFERENCES form_definitions(id),` + fieldTableColumns + `
)`,
	`CREATE INDEX IF NOT EXISTS idx_form_fields_owner ON form_fields(form_id, position)`,
	`CREATE TABLE IF NOT EXISTS assets (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	asset_type_id TEXT NOT NULL DEFAULT '',
	parent_id TEXT NOT NULL DEFAULT '',
	hierarchy_level TEXT NOT NULL,
	status TEXT NOT NULL,
	criticality TEXT NOT NULL,
	location TEXT NOT NULL DEFAULT '',
	data TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`,
}

const (
	selectAssetType  = `SELECT id, name, description, icon, status FROM asset_types WHERE id = ?`
	selectAssetTypes = `SELECT id, name, description, icon, status FROM asset_types ORDER BY rowid`
	assetTypeExists  = `SELECT 1 FROM asset_types WHERE id = ?`
	selectCoreFields = `SELECT ` + fieldColumns + ` FROM asset_type_fields WHERE asset_type_id = ? ORDER BY position`

	selectForm       = `SELECT id, name, description, asset_type_id, version, is_published, status FROM form_definitions WHERE id = ?`
	selectForms      = `SELECT id, name, description, asset_type_id, version, is_published, status FROM form_definitions WHERE asset_type_id = ? AND is_published = 1 ORDER BY rowid`
	formExists       = `SELECT 1 FROM form_definitions WHERE id = ?`
	selectFormFields = `SELECT ` + fieldColumns + ` FROM form_fields WHERE form_id = ? ORDER BY position`

	upsertAssetType = `INSERT INTO asset_types (id, name, description, icon, status) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description, icon = excluded.icon, status = excluded.status`
	deleteCoreFields = `DELETE FROM asset_type_fields WHERE asset_type_id = ?`
	insertCoreField  = `INSERT INTO asset_type_fields (asset_type_id, ` + fieldColumns + `, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	upsertForm = `INSERT INTO form_definitions (id, name, description, asset_type_id, version, is_published, status) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET name = excluded.name, description = excluded.description, asset_type_id = excluded.asset_type_id, version = excluded.version, is_published = excluded.is_published, status = excluded.status`
	deleteFormFields = `DELETE FROM form_fields WHERE form_id = ?`
	insertFormField  = `INSERT INTO form_fields (form_id, ` + fieldColumns + `, position) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertAsset = `INSERT INTO assets (id, name, asset_type_id, parent_id, hierarchy_level, status, criticality, location, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	updateAsset = `UPDATE assets SET name = ?, asset_type_id = ?, parent_id = ?, hierarchy_level = ?, status = ?, criticality = ?, location = ?, data = ?, updated_at = ? WHERE id = ?`
	selectAsset = `SELECT id, name, asset_type_id, parent_id, hierarchy_level, status, criticality, location, data, created_at, updated_at FROM assets WHERE id = ?`
)
