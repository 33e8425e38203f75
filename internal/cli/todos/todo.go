package todos

import (
	"context"
	"fmt"

	"github.com/julianstephens/daybook/internal/cli"
	"github.com/julianstephens/daybook/internal/constants"
)

type TodoAddCmd struct {
	Title string `arg:"" help:"Todo title."`
	Due   string `short:"d" help:"Due date (YYYY-MM-DD, today, tomorrow, +N)." default:"today"`
}

func (c *TodoAddCmd) Run(ctx *cli.Context) error {
	due, err := cli.ParseDate(ctx.Clock, c.Due)
	if err != nil {
		return err
	}
	todo, err := ctx.Agenda.CreateTodo(context.Background(), c.Title, due)
	if err != nil {
		return fmt.Errorf("failed to add todo: %w", err)
	}
	ctx.Printf("Added todo: %s due %s (ID: %s)\n", todo.Title, todo.DueDate, todo.ID)
	return nil
}

type TodoDoneCmd struct {
	ID string `arg:"" help:"Todo ID."`
}

func (c *TodoDoneCmd) Run(ctx *cli.Context) error {
	todo, err := ctx.Agenda.SetTodoStatus(context.Background(), c.ID, constants.TodoDone)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	ctx.Printf("✓ %s\n", todo.Title)
	return nil
}

type TodoUndoCmd struct {
	ID string `arg:"" help:"Todo ID."`
}

func (c *TodoUndoCmd) Run(ctx *cli.Context) error {
	todo, err := ctx.Agenda.SetTodoStatus(context.Background(), c.ID, constants.TodoPending)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	ctx.Printf("○ %s\n", todo.Title)
	return nil
}

type TodoDeleteCmd struct {
	ID string `arg:"" help:"Todo ID."`
}

func (c *TodoDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Agenda.DeleteTodo(context.Background(), c.ID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	ctx.Printf("Deleted todo: %s\n", c.ID)
	return nil
}

type TodoListCmd struct {
	From    string `help:"First due date to include." default:"today"`
	Days    int    `help:"Number of days to include." default:"7"`
	ShowIDs bool   `help:"Show todo IDs." name:"show-ids"`
}

func (c *TodoListCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 || c.Days > constants.MaxUpcomingDays {
		return fmt.Errorf("--days must be between 1 and %d", constants.MaxUpcomingDays)
	}
	from, err := cli.ParseDate(ctx.Clock, c.From)
	if err != nil {
		return err
	}
	todos, err := ctx.Agenda.ListTodos(context.Background(), from, from.AddDays(c.Days))
	if err != nil {
		return fmt.Errorf("failed to list todos: %w", err)
	}
	if len(todos) == 0 {
		ctx.Println("No todos found")
		return nil
	}

	ctx.Println("Todos:")
	for _, todo := range todos {
		idStr := ""
		if c.ShowIDs {
			idStr = fmt.Sprintf(" (ID: %s)", todo.ID)
		}
		ctx.Printf("  %s %s  %s%s\n", cli.StatusIcon(string(todo.Status)), todo.DueDate, todo.Title, idStr)
	}
	return nil
}
