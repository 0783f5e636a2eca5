package taskstore

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    project TEXT NOT NULL DEFAULT '',
    bucket INTEGER,
    tags TEXT NOT NULL DEFAULT '[]',
    notes TEXT NOT NULL DEFAULT '',
    deadline TIMESTAMP,
    estimate_minutes INTEGER,
    window_start TEXT,
    window_end TEXT,
    recurrence TEXT,
    last_completed_at TIMESTAMP,
    next_due_at TIMESTAMP,
    dependencies TEXT NOT NULL DEFAULT '[]',
    curve_config TEXT NOT NULL DEFAULT '{}',
    status TEXT NOT NULL DEFAULT 'open',
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project);
CREATE INDEX IF NOT EXISTS idx_tasks_bucket ON tasks(bucket);

CREATE TABLE IF NOT EXISTS completions (
    id TEXT PRIMARY KEY,
    task_id INTEGER NOT NULL REFERENCES tasks(id),
    completed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_completions_task_id ON completions(task_id);
`
