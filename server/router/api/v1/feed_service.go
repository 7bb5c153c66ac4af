package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	apierrors "github.com/flashwise/flashwise/server/internal/errors"
	"github.com/flashwise/flashwise/store"
)

const feedItemLimit = 50

// GetUserFeed serves an Atom feed of cards recently added to the user's
// public decks. No authentication required.
func (s *APIV1Service) GetUserFeed(c echo.Context) error {
	ctx := c.Request().Context()

	username := c.Param("username")
	user, err := s.Store.GetUser(ctx, &store.FindUser{Username: &username})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to find user", err))
	}
	if user == nil {
		return replyError(c, apierrors.NotFound("user %q not found", username))
	}

	public := store.Public
	normal := store.Normal
	decks, err := s.Store.ListDecks(ctx, &store.FindDeck{
		CreatorID:  &user.ID,
		Visibility: &public,
		RowStatus:  &normal,
	})
	if err != nil {
		return replyError(c, apierrors.Internal("failed to list public decks", err))
	}

	instanceURL := s.Profile.InstanceURL
	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s's public decks", displayName(user)),
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/u/%s", instanceURL, user.Username)},
		Description: fmt.Sprintf("Flashcards recently added to %s's public decks", displayName(user)),
		Created:     time.Unix(user.CreatedTs, 0),
	}

	deckNames := make(map[int32]string, len(decks))
	limit := feedItemLimit
	for _, deck := range decks {
		deckNames[deck.ID] = deck.Name
		cards, err := s.Store.ListCards(ctx, &store.FindCard{
			DeckID:    &deck.ID,
			RowStatus: &normal,
			Limit:     &limit,
		})
		if err != nil {
			return replyError(c, apierrors.Internal("failed to list deck cards", err))
		}
		for _, card := range cards {
			html, renderErr := s.Markdown.RenderHTML(card.Front + "\n\n---\n\n" + card.Back)
			if renderErr != nil {
				html = card.Front
			}
			feed.Items = append(feed.Items, &feeds.Item{
				Id:          card.UID,
				Title:       card.Front,
				Link:        &feeds.Link{Href: fmt.Sprintf("%s/decks/%s", instanceURL, deck.UID)},
				Description: fmt.Sprintf("From deck %q", deckNames[card.DeckID]),
				Content:     html,
				Created:     time.Unix(card.CreatedTs, 0),
			})
		}
	}

	// Newest first, capped across all decks.
	feed.Sort(func(a, b *feeds.Item) bool {
		return a.Created.After(b.Created)
	})
	if len(feed.Items) > feedItemLimit {
		feed.Items = feed.Items[:feedItemLimit]
	}

	atom, err := feed.ToAtom()
	if err != nil {
		return replyError(c, apierrors.Internal("failed to render feed", err))
	}
	return c.Blob(http.StatusOK, "application/atom+xml; charset=utf-8", []byte(atom))
}

func displayName(user *store.User) string {
	if user.Nickname != "" {
		return user.Nickname
	}
	return user.Username
}
