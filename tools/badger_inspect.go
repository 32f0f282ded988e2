package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"vitatrack/infrastructure/storage"
)

func main() {
	dbPath := flag.String("db", "./data/accounts", "Path to badger DB")
	// Email index entries hold bare ids, only records are listed.
	prefix := flag.String("prefix", storage.UserIDPrefix, "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Name", "Email", "Weight", "Height", "Roles", "Joined"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				user, err := storage.DecodeUser(v)
				if err != nil {
					fmt.Printf("Error decoding key %s: %v\n", string(item.Key()), err)
					return nil
				}
				table.Append([]string{
					string(item.Key()),
					user.Name,
					user.Email,
					fmt.Sprintf("%.1f", user.Weight),
					fmt.Sprintf("%.1f", user.Height),
					strings.Join(user.Roles, ","),
					user.JoinedAt.Format("2006-01-02 15:04"),
				})
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()
	fmt.Printf("%d record(s)\n", count)
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
