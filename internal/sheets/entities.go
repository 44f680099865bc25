package sheets

import (
	"context"
	"strings"
)

// Message is one logged chat message.
type Message struct {
	From string
	Body string
	Type string // defaults to "text"
}

// User is a contact registered in the Users range.
type User struct {
	Phone  string
	Name   string // defaults to "Unknown"
	Status string // defaults to "active"
	Plan   string // defaults to "free"
}

// Reminder is a scheduled message request. Status is one of pending, sent or
// cancelled by convention only.
type Reminder struct {
	Phone         string
	Message       string
	ScheduledTime string
	Frequency     string // defaults to "once"
	Status        string // defaults to "pending"
}

// Analytic is a single tracked user action.
type Analytic struct {
	Phone     string
	Action    string
	SessionID string // a random UUID when empty
	EventType string
}

// Template is a message template registered by a user.
type Template struct {
	Name     string
	Content  string
	Phone    string
	Category string // defaults to "once"
	Status   string // defaults to "pending"
}

// LogMessage appends msg to the Messages range.
func (c *Client) LogMessage(ctx context.Context, msg Message) Result {
	row := []interface{}{c.timestamp(), msg.From, msg.Body, orDefault(msg.Type, "text")}
	if err := c.appendRow(ctx, MessagesRange, row); err != nil {
		c.logger.Error("error logging message", "error", err)
		return Result{Success: false, Error: err.Error()}
	}
	c.logger.Info("message logged", "from", msg.From, "message", msg.Body)
	return Result{Success: true}
}

// Config returns the keyword -> response table from the Config range. Row 1
// is a header. Keywords are lower-cased; a later row overrides an earlier one
// with the same keyword. Rows missing either cell are skipped. Any failure
// yields an empty map.
func (c *Client) Config(ctx context.Context) map[string]string {
	cfg := map[string]string{}

	rows, err := c.readRows(ctx, ConfigRange)
	if err != nil {
		c.logger.Error("error loading config", "error", err)
		return cfg
	}

	for i := 1; i < len(rows); i++ {
		if len(rows[i]) < 2 {
			continue
		}
		keyword, response := rows[i][0], rows[i][1]
		if keyword == "" || response == "" {
			continue
		}
		cfg[strings.ToLower(keyword)] = response
	}

	c.logger.Info("config loaded", "keywords", len(cfg))
	return cfg
}

// CreateSheet writes the Messages and Config headers plus two sample config
// rows into spreadsheetID so a blank spreadsheet becomes usable.
func (c *Client) CreateSheet(ctx context.Context, spreadsheetID string) Result {
	err := c.updateRows(ctx, spreadsheetID, "Messages!A1:D1", [][]interface{}{
		{"Timestamp", "From", "Message", "Type"},
	})
	if err == nil {
		err = c.updateRows(ctx, spreadsheetID, "Config!A1:B3", [][]interface{}{
			{"Keyword", "Response"},
			{"hola", "¡Hola! ¿En qué te ayudo?"},
			{"precio", "Contáctanos para información de precios"},
		})
	}
	if err != nil {
		c.logger.Error("error creating sheet structure", "spreadsheet_id", spreadsheetID, "error", err)
		return Result{Success: false, Error: err.Error()}
	}

	c.logger.Info("sheet initialised with headers and sample config", "spreadsheet_id", spreadsheetID)
	return Result{Success: true}
}

// AddUser appends u to the Users range.
func (c *Client) AddUser(ctx context.Context, u User) Result {
	return c.add(ctx, UsersRange, "User", []interface{}{
		c.timestamp(),
		u.Phone,
		orDefault(u.Name, "Unknown"),
		orDefault(u.Status, "active"),
		orDefault(u.Plan, "free"),
	})
}

// Users returns all rows of the Users range.
func (c *Client) Users(ctx context.Context) RowsResult {
	return c.list(ctx, UsersRange, "users")
}

// AddReminder appends r to the Reminders range.
func (c *Client) AddReminder(ctx context.Context, r Reminder) Result {
	return c.add(ctx, RemindersRange, "Reminder", []interface{}{
		c.timestamp(),
		r.Phone,
		r.Message,
		r.ScheduledTime,
		orDefault(r.Frequency, "once"),
		orDefault(r.Status, "pending"),
	})
}

// Reminders returns all rows of the Reminders range.
func (c *Client) Reminders(ctx context.Context) RowsResult {
	return c.list(ctx, RemindersRange, "reminders")
}

// AddAnalytic appends a to the Analytics range.
func (c *Client) AddAnalytic(ctx context.Context, a Analytic) Result {
	sessionID := a.SessionID
	if sessionID == "" {
		sessionID = c.newID()
	}
	return c.add(ctx, AnalyticsRange, "Analytic", []interface{}{
		c.timestamp(),
		a.Phone,
		a.Action,
		sessionID,
		a.EventType,
	})
}

// Analytics returns all rows of the Analytics range.
func (c *Client) Analytics(ctx context.Context) RowsResult {
	return c.list(ctx, AnalyticsRange, "analytics")
}

// AddTemplate appends t to the Templates range.
func (c *Client) AddTemplate(ctx context.Context, t Template) Result {
	return c.add(ctx, TemplatesRange, "Template", []interface{}{
		c.timestamp(),
		t.Name,
		t.Content,
		t.Phone,
		orDefault(t.Category, "once"),
		orDefault(t.Status, "pending"),
	})
}

// Templates returns all rows of the Templates range.
func (c *Client) Templates(ctx context.Context) RowsResult {
	return c.list(ctx, TemplatesRange, "templates")
}

func (c *Client) add(ctx context.Context, rng, entity string, row []interface{}) Result {
	if err := c.appendRow(ctx, rng, row); err != nil {
		c.logger.Error("error adding row", "range", rng, "error", err)
		return Result{Success: false, Error: err.Error()}
	}
	c.logger.Info("row added", "range", rng)
	return Result{Success: true, Message: entity + " added successfully"}
}

func (c *Client) list(ctx context.Context, rng, what string) RowsResult {
	rows, err := c.readRows(ctx, rng)
	if err != nil {
		c.logger.Error("error getting "+what, "range", rng, "error", err)
		return RowsResult{Success: false, Error: err.Error()}
	}
	c.logger.Info(what+" retrieved", "rows", len(rows))
	return RowsResult{Success: true, Data: rows}
}
