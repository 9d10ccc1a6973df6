package postgresql

// migrations returns the ordered schema migrations for PostgreSQL.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS states (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				name TEXT NOT NULL,
				position INTEGER NOT NULL DEFAULT 0
			);

			CREATE INDEX IF NOT EXISTS idx_states_project ON states (project_id);

			CREATE TABLE IF NOT EXISTS workflows (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				name TEXT NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_project ON workflows (project_id);

			-- State references are soft on purpose: deleting a state must not
			-- be blocked by workflows that mention it. Stale references are
			-- dropped when the definition is compiled.
			CREATE TABLE IF NOT EXISTS workflow_steps (
				workflow_id TEXT NOT NULL REFERENCES workflows (id) ON DELETE CASCADE,
				state_id TEXT NOT NULL,
				step_order INTEGER NOT NULL,
				PRIMARY KEY (workflow_id, state_id),
				UNIQUE (workflow_id, step_order)
			);

			-- from_state IS NULL means the transition is legal from any state.
			CREATE TABLE IF NOT EXISTS workflow_transitions (
				workflow_id TEXT NOT NULL REFERENCES workflows (id) ON DELETE CASCADE,
				from_state TEXT NULL,
				to_state TEXT NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_workflow_transitions_workflow
				ON workflow_transitions (workflow_id);

			CREATE TABLE IF NOT EXISTS task_types (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				name TEXT NOT NULL,
				workflow_id TEXT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_task_types_project ON task_types (project_id);

			CREATE TABLE IF NOT EXISTS tasks (
				id TEXT PRIMARY KEY,
				project_id TEXT NOT NULL,
				title TEXT NOT NULL,
				task_type_id TEXT NULL,
				state_id TEXT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks (project_id);
		`,
	}
}
