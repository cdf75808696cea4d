package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/Clark-Hu/cineadmin/internal/catalog"
	"github.com/Clark-Hu/cineadmin/internal/domain"
)

var errNotSignedIn = errors.New("not signed in, run `cineadmin login` first")

// Signup creates an account, then stores its session token.
func (r *Runner) Signup(ctx context.Context, cmd *cli.Command) error {
	role := domain.RoleUser
	if cmd.Bool("admin") {
		role = domain.RoleAdmin
	}
	res, err := r.client.Signup(ctx, cmd.String("email"), cmd.String("password"), role)
	if err != nil {
		return fmt.Errorf("signup: %w", err)
	}
	if err := r.saveToken(res.Token); err != nil {
		return err
	}
	return r.writePlain("Signed up as %s (%s)\n", res.User.Email, res.User.Role)
}

// Login exchanges credentials for a session token.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	res, err := r.client.Login(ctx, cmd.String("email"), cmd.String("password"))
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := r.saveToken(res.Token); err != nil {
		return err
	}
	return r.writePlain("Signed in as %s (%s)\n", res.User.Email, res.User.Role)
}

func (r *Runner) Logout(_ context.Context, _ *cli.Command) error {
	r.client.SetToken("")
	if err := r.saveToken(""); err != nil {
		return err
	}
	return r.writePlain("Signed out\n")
}

type whoamiOutput struct {
	UserID       string              `json:"userId,omitempty"`
	Role         string              `json:"role"`
	Capabilities domain.Capabilities `json:"capabilities"`
}

func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	actor := r.actor(ctx)
	out := whoamiOutput{Role: actor.Role.String(), Capabilities: actor.Caps}
	if actor.Authenticated() {
		out.UserID = actor.UserID.String()
	}
	if cmd.Bool("json") {
		return r.writeJSON(out)
	}
	if !actor.Authenticated() {
		return r.writePlain("guest (not signed in)\n")
	}
	return r.writePlain("%s  role=%s  like=%t  moderate=%t\n",
		out.UserID, out.Role, actor.Caps.CanLike, actor.Caps.CanModerate)
}

type movieRow struct {
	domain.Movie
	Liked bool `json:"liked"`
}

// MoviesList loads the catalog for the current actor and prints it.
func (r *Runner) MoviesList(ctx context.Context, cmd *cli.Command) error {
	view, err := r.catalog.Load(ctx, r.actor(ctx))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		rows := make([]movieRow, 0, len(view.Movies))
		for _, m := range view.Movies {
			rows = append(rows, movieRow{Movie: m, Liked: view.Liked.Has(m.ID)})
		}
		return r.writeJSON(rows)
	}
	return r.renderMovies(view)
}

func (r *Runner) renderMovies(view catalog.View) error {
	if len(view.Movies) == 0 {
		return r.writePlain("No movies yet\n")
	}
	tw := tabwriter.NewWriter(r.output, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tGENRE\tYEAR\tLIKED")
	for _, m := range view.Movies {
		mark := ""
		if view.Liked.Has(m.ID) {
			mark = "♥"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", m.ID, m.Title, m.Genre, m.Year, mark)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// MoviesLike loads the actor's likes first so the toggle flips the stored state.
func (r *Runner) MoviesLike(ctx context.Context, cmd *cli.Command) error {
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}
	actor := r.actor(ctx)
	if !actor.Authenticated() {
		return errNotSignedIn
	}
	if _, err := r.catalog.Load(ctx, actor); err != nil {
		return err
	}
	liked, err := r.catalog.ToggleLike(ctx, actor, id)
	if err != nil {
		return err
	}
	if liked {
		return r.writePlain("Liked movie %d\n", id)
	}
	return r.writePlain("Unliked movie %d\n", id)
}

func (r *Runner) MoviesAdd(ctx context.Context, cmd *cli.Command) error {
	movie, err := r.catalog.CreateMovie(ctx, r.actor(ctx), fieldsFromFlags(cmd, domain.MovieFields{}))
	if err != nil {
		return err
	}
	return r.writePlain("Created movie %d: %s\n", movie.ID, movie.Title)
}

// MoviesEdit starts from the stored movie so only the flags given change.
func (r *Runner) MoviesEdit(ctx context.Context, cmd *cli.Command) error {
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}
	current, err := r.client.GetMovie(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch movie %d: %w", id, err)
	}
	base := domain.MovieFields{
		Title:       current.Title,
		Genre:       current.Genre,
		Year:        current.Year,
		Description: current.Description,
		ImageURL:    current.ImageURL,
	}
	movie, err := r.catalog.EditMovie(ctx, r.actor(ctx), id, fieldsFromFlags(cmd, base))
	if err != nil {
		return err
	}
	return r.writePlain("Updated movie %d: %s\n", movie.ID, movie.Title)
}

func (r *Runner) MoviesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := movieIDArg(cmd)
	if err != nil {
		return err
	}
	if err := r.catalog.DeleteMovie(ctx, r.actor(ctx), id); err != nil {
		return err
	}
	return r.writePlain("Deleted movie %d\n", id)
}

// MoviesImport creates every movie in a JSON file. A failing entry does not
// stop the rest; all failures are reported together.
func (r *Runner) MoviesImport(ctx context.Context, cmd *cli.Command) error {
	entries, err := readMovieFile(cmd.String("file"))
	if err != nil {
		return err
	}
	actor := r.actor(ctx)
	if !actor.Caps.CanModerate {
		return catalog.ErrPermissionDenied
	}

	var errs []error
	created := 0
	for i, fields := range entries {
		if _, err := r.catalog.CreateMovie(ctx, actor, fields); err != nil {
			r.logger.Warn("import entry failed", "index", i, "titulo", fields.Title, "err", err)
			errs = append(errs, fmt.Errorf("entry %d (%q): %w", i, fields.Title, err))
			continue
		}
		created++
	}
	if err := r.writePlain("Imported %d of %d movies\n", created, len(entries)); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	rec, err := r.client.SubmitRecommendation(ctx, cmd.String("nome"), cmd.String("indicacao"))
	if err != nil {
		return fmt.Errorf("send recommendation: %w", err)
	}
	return r.writePlain("Thanks %s, recommendation #%d received\n", rec.Name, rec.ID)
}

func (r *Runner) Recommendations(ctx context.Context, cmd *cli.Command) error {
	recs, err := r.client.ListRecommendations(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("list recommendations: %w", err)
	}
	if cmd.Bool("json") {
		return r.writeJSON(recs)
	}
	if len(recs) == 0 {
		return r.writePlain("No recommendations yet\n")
	}
	for _, rec := range recs {
		if err := r.writePlain("[%s] %s: %s\n",
			rec.CreatedAt.Format("2006-01-02 15:04"), rec.Name, rec.Text); err != nil {
			return err
		}
	}
	return nil
}

func movieIDArg(cmd *cli.Command) (int64, error) {
	raw := strings.TrimSpace(cmd.StringArg("id"))
	if raw == "" {
		return 0, fmt.Errorf("movie id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", raw)
	}
	return id, nil
}

// fieldsFromFlags overlays the movie flags that were set onto base.
func fieldsFromFlags(cmd *cli.Command, base domain.MovieFields) domain.MovieFields {
	if cmd.IsSet("titulo") {
		base.Title = cmd.String("titulo")
	}
	if cmd.IsSet("genero") {
		base.Genre = cmd.String("genero")
	}
	if cmd.IsSet("ano") {
		base.Year = int(cmd.Int("ano"))
	}
	if cmd.IsSet("descricao") {
		base.Description = cmd.String("descricao")
	}
	if cmd.IsSet("imagem") {
		base.ImageURL = cmd.String("imagem")
	}
	return base
}

func readMovieFile(path string) ([]domain.MovieFields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	var entries []domain.MovieFields
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse import file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("import file %s has no movies", path)
	}
	return entries, nil
}
