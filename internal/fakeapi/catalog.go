package fakeapi

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"

	"shelfchat/internal/api"
)

// pageSize mirrors the real backend, which never returns more than 20 rows.
const pageSize = 20

// Catalog is an in-memory list of books searchable by title or author.
type Catalog struct {
	books []api.BookSuggestion
}

// NewCatalog wraps books in a searchable catalog.
func NewCatalog(books []api.BookSuggestion) *Catalog {
	return &Catalog{books: books}
}

// LoadCatalog reads a JSON array of {book_id, title, author} rows.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	var books []api.BookSuggestion
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}
	return NewCatalog(books), nil
}

// Search returns the first page of books whose title or author contains q,
// ignoring case. An empty q returns the first page of the catalog.
func (c *Catalog) Search(q string) []api.BookSuggestion {
	// A Caser holds state and must not be shared between requests.
	fold := cases.Fold()
	out := []api.BookSuggestion{}
	needle := fold.String(q)
	for _, b := range c.books {
		if len(out) == pageSize {
			break
		}
		if needle == "" ||
			strings.Contains(fold.String(b.Title), needle) ||
			strings.Contains(fold.String(b.Author), needle) {
			out = append(out, b)
		}
	}
	return out
}

// Lookup finds a book by id.
func (c *Catalog) Lookup(id api.BookID) (api.BookSuggestion, bool) {
	for _, b := range c.books {
		if b.BookID == id {
			return b, true
		}
	}
	return api.BookSuggestion{}, false
}

// Books returns every catalog entry in order.
func (c *Catalog) Books() []api.BookSuggestion {
	out := make([]api.BookSuggestion, len(c.books))
	copy(out, c.books)
	return out
}

// SampleCatalog is a handful of Book-Crossing rows, raw entities included,
// for running the clients without the real backend.
func SampleCatalog() *Catalog {
	return NewCatalog([]api.BookSuggestion{
		{BookID: "0195153448", Title: "Classical Mythology", Author: "Mark P. O. Morford"},
		{BookID: "0002005018", Title: "Clara Callan", Author: "Richard Bruce Wright"},
		{BookID: "0060973129", Title: "Decision in Normandy", Author: "Carlo D'Este"},
		{BookID: "0374157065", Title: "Flu: The Story of the Great Influenza Pandemic of 1918 and the Search for the Virus That Caused It", Author: "Gina Bari Kolata"},
		{BookID: "0393045218", Title: "The Mummies of Urumchi", Author: "E. J. W. Barber"},
		{BookID: "0399135782", Title: "The Kitchen God's Wife", Author: "Amy Tan"},
		{BookID: "0425176428", Title: "What If?: The World's Foremost Military Historians Imagine What Might Have Been", Author: "Robert Cowley"},
		{BookID: "0671870432", Title: "PLEADING GUILTY", Author: "Scott Turow"},
		{BookID: "0679425608", Title: "Under the Black Flag: The Romance and the Reality of Life Among the Pirates", Author: "David Cordingly"},
		{BookID: "074322678X", Title: "Where You'll Find Me: And Other Stories", Author: "Ann Beattie"},
		{BookID: "0771074670", Title: "Nights Below Station Street", Author: "David Adams Richards"},
		{BookID: "080652121X", Title: "Hitler's Secret Bankers: The Myth of Swiss Neutrality During the Holocaust", Author: "Adam Lebor"},
		{BookID: "0887841740", Title: "The Middle Stories", Author: "Sheila Heti"},
		{BookID: "1552041778", Title: "Jane Doe", Author: "R. J. Kaiser"},
		{BookID: "1558746218", Title: "A Second Chicken Soup for the Woman's Soul (Chicken Soup for the Soul Series)", Author: "Jack Canfield"},
		{BookID: "1567407781", Title: "The Witchfinder (Amos Walker Mystery Series)", Author: "Loren D. Estleman"},
		{BookID: "1575663937", Title: "More Cunning Than Man: A Social History of Rats and Man", Author: "Robert Hendrickson"},
		{BookID: "1881320189", Title: "Goodbye to the Buttermilk Sky", Author: "Julia Oliver"},
		{BookID: "0440234743", Title: "The Testament", Author: "John Grisham"},
		{BookID: "0452264464", Title: "Beloved (Plume Contemporary Fiction)", Author: "Toni Morrison"},
		{BookID: "0609804618", Title: "Our Dumb Century: The Onion Presents 100 Years of Headlines from America's Finest News Source", Author: "The Onion"},
		{BookID: "1841721522", Title: "New Vegetarian: Bold and Beautiful Recipes for Every Occasion", Author: "Celia Brooks Brown"},
		{BookID: "0439095026", Title: "Tell Me This Isn't Happening", Author: "Robynn Clairday"},
		{BookID: "0689821166", Title: "Flood : Mississippi 1927", Author: "Kathleen Duey"},
		{BookID: "0971880107", Title: "Wild Animus", Author: "Rich Shapero"},
		{BookID: "0345402871", Title: "Airframe", Author: "Michael Crichton"},
		{BookID: "0345417623", Title: "Timeline", Author: "MICHAEL CRICHTON"},
		{BookID: "0684823802", Title: "OUT OF THE SILENT PLANET", Author: "C.S. Lewis"},
		{BookID: "0375759778", Title: "Prague : A Novel", Author: "ARTHUR PHILLIPS"},
		{BookID: "0439136350", Title: "Harry Potter and the Prisoner of Azkaban (Book 3)", Author: "J. K. Rowling"},
		{BookID: "0425163091", Title: "Chocolate Jesus", Author: "Stephan Jaramillo"},
		{BookID: "3404921038", Title: "Wie Barney es sieht.", Author: "Mordecai Richler"},
		{BookID: "2080674722", Title: "Les Particules Elementaires", Author: "Michel Houellebecq"},
		{BookID: "0385504209", Title: "The Da Vinci Code", Author: "Dan Brown"},
		{BookID: "0316666343", Title: "The Lovely Bones: A Novel", Author: "Alice Sebold"},
		{BookID: "0060928336", Title: "Divine Secrets of the Ya-Ya Sisterhood: A Novel", Author: "Rebecca Wells"},
		{BookID: "0142001740", Title: "The Secret Life of Bees", Author: "Sue Monk Kidd"},
		{BookID: "0446672211", Title: "Where the Heart Is (Oprah's Book Club (Paperback))", Author: "Billie Letts"},
		{BookID: "0786868716", Title: "The Five People You Meet in Heaven", Author: "Mitch Albom"},
		{BookID: "0743418174", Title: "Good in Bed", Author: "Jennifer Weiner"},
		{BookID: "0440211727", Title: "A Time to Kill", Author: "JOHN GRISHAM"},
		{BookID: "0671027360", Title: "Angels &amp; Demons", Author: "Dan Brown"},
	})
}
