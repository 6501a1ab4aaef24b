package vcs

import (
	"context"
	"fmt"
	"strings"
)

// Bump is one formula moved to a new version.
type Bump struct {
	Formula string
	Version string
}

// Author is the identity recorded on the commit.
type Author struct {
	Name  string
	Email string
}

// Publisher records a run's bumps as a single commit and pushes it.
type Publisher struct {
	Repo   *Repository
	Author Author
	Branch string // remote branch to push HEAD to
	Token  string // injected into the push URL as token:<Token>
	DryRun bool   // log the commit and push instead of running them
	NoPush bool   // commit but do not push
}

// CommitMessage lists every bump: "Bump formulas: a to 1.2, b to 3.4".
func CommitMessage(bumps []Bump) string {
	parts := make([]string, 0, len(bumps))
	for _, b := range bumps {
		parts = append(parts, b.Formula+" to "+b.Version)
	}
	return "Bump formulas: " + strings.Join(parts, ", ")
}

// Publish stages the whole working tree, commits it and pushes HEAD to
// Branch. Nothing happens when bumps is empty.
func (p *Publisher) Publish(ctx context.Context, bumps []Bump) error {
	log := p.Repo.Logger
	if len(bumps) == 0 {
		log.Info().Msg("No formulas were bumped")
		return nil
	}

	message := CommitMessage(bumps)
	if p.DryRun {
		log.Info().Str("message", message).Msg("Dry run: would commit changes")
	} else {
		if _, err := p.Repo.Run(ctx, nil, "add", "."); err != nil {
			return err
		}
		env := []string{
			"GIT_AUTHOR_NAME=" + p.Author.Name,
			"GIT_AUTHOR_EMAIL=" + p.Author.Email,
			"GIT_COMMITTER_NAME=" + p.Author.Name,
			"GIT_COMMITTER_EMAIL=" + p.Author.Email,
			"TZ=UTC",
		}
		if _, err := p.Repo.Run(ctx, env, "commit", "-m", message); err != nil {
			return err
		}
		log.Info().Str("message", message).Msg("Changes committed")
	}

	if p.NoPush {
		log.Info().Msg("Push disabled, leaving commit local")
		return nil
	}

	remotes, err := p.Repo.Run(ctx, nil, "remote", "-v")
	if err != nil {
		return err
	}
	remote, err := pushRemote(remotes)
	if err != nil {
		return fmt.Errorf("finding push remote: %w", err)
	}
	log.Info().Str("remote", remote.Host+remote.Path).Str("repository", remote.OrgRepo()).Msg("Resolved push remote")

	refspec := "HEAD:" + p.Branch
	if p.DryRun {
		redacted := remote.WithBasicAuth("token", "REDACTED")
		log.Info().Msgf("Dry run: would run git push %s %s", redacted, refspec)
		return nil
	}

	pushURL := remote.WithBasicAuth("token", p.Token)
	if _, err := p.Repo.Run(ctx, nil, "push", pushURL.String(), refspec); err != nil {
		return err
	}
	log.Info().Str("branch", p.Branch).Msg("Changes pushed")
	return nil
}
