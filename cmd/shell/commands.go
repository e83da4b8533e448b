package shell

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"lotto/domain/entities"
	"lotto/domain/interfaces"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// initializeCommands sets up all available shell commands
func (s *Shell) initializeCommands() {
	s.commands = map[string]Command{
		"help": {
			Handler:     s.handleHelp,
			Description: "Show available commands",
			Usage:       "help [command]",
			Category:    "utility",
		},
		"as": {
			Handler:     s.handleAs,
			Description: "Select the identity used for buy, reveal and claim",
			Usage:       "as <address>",
			Category:    "utility",
		},
		"commitment": {
			Handler:     s.handleCommitment,
			Description: "Compute the commitment hash for an address and number",
			Usage:       "commitment <address> <number>",
			Category:    "utility",
		},
		"fund": {
			Handler:     s.handleFund,
			Description: "Credit an account on the ledger",
			Usage:       "fund <amount> [address]",
			Category:    "ledger",
		},
		"balance": {
			Handler:     s.handleBalance,
			Description: "Show an account balance",
			Usage:       "balance [address]",
			Category:    "ledger",
		},
		"ledger": {
			Handler:     s.handleLedger,
			Description: "Show recent ledger entries of an account",
			Usage:       "ledger [address] [limit]",
			Category:    "ledger",
		},
		"create": {
			Handler:     s.handleCreate,
			Description: "Open a lottery; with a number, also buy ticket 0 committed to it",
			Usage:       "create <tickets> <price> [commit-reveal|block-hash] [number]",
			Category:    "lottery",
		},
		"list": {
			Handler:     s.handleList,
			Description: "List recent lotteries",
			Usage:       "list [limit]",
			Category:    "lottery",
		},
		"show": {
			Handler:     s.handleShow,
			Description: "Show a lottery and its tickets",
			Usage:       "show <lottery_id>",
			Category:    "lottery",
		},
		"available": {
			Handler:     s.handleAvailable,
			Description: "Show the number of unsold tickets",
			Usage:       "available <lottery_id>",
			Category:    "lottery",
		},
		"buy": {
			Handler:     s.handleBuy,
			Description: "Buy the next ticket, committing to number ('-' for block hash lotteries)",
			Usage:       "buy <lottery_id> <number|-> [payment]",
			Category:    "lottery",
		},
		"reveal": {
			Handler:     s.handleReveal,
			Description: "Reveal the number behind your commitments",
			Usage:       "reveal <lottery_id> <number>",
			Category:    "lottery",
		},
		"winner": {
			Handler:     s.handleWinner,
			Description: "Show the winner, resolving the lottery if possible",
			Usage:       "winner <lottery_id>",
			Category:    "lottery",
		},
		"claim": {
			Handler:     s.handleClaim,
			Description: "Claim the pot as the winner",
			Usage:       "claim <lottery_id>",
			Category:    "lottery",
		},
		"events": {
			Handler:     s.handleEvents,
			Description: "Show the event log of a lottery",
			Usage:       "events <lottery_id>",
			Category:    "lottery",
		},
	}
}

func (s *Shell) handleHelp(ctx context.Context, args []string) error {
	if len(args) > 0 {
		cmd, exists := s.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(s.out, "%s\n  %s\n  Usage: %s\n", args[0], cmd.Description, cmd.Usage)
		return nil
	}

	byCategory := map[string][]string{}
	for name, cmd := range s.commands {
		byCategory[cmd.Category] = append(byCategory[cmd.Category], name)
	}

	for _, category := range []string{"lottery", "ledger", "utility"} {
		names := byCategory[category]
		sort.Strings(names)
		fmt.Fprintf(s.out, "\n%s:\n", category)
		for _, name := range names {
			fmt.Fprintf(s.out, "  %-12s %s\n", name, s.commands[name].Description)
		}
	}
	fmt.Fprintf(s.out, "\n  %-12s %s\n  %-12s %s\n", "history", "Show command history", "exit", "Leave the shell")
	return nil
}

func (s *Shell) handleAs(ctx context.Context, args []string) error {
	if len(args) < 1 {
		if s.caller == nil {
			return fmt.Errorf("usage: as <address>")
		}
		fmt.Fprintf(s.out, "Current identity: %s\n", s.caller.Hex())
		return nil
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	s.caller = &addr
	s.printSuccess("acting as %s", addr.Hex())
	return nil
}

func (s *Shell) handleCommitment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: commitment <address> <number>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	number, err := entities.ParseNumber(args[1])
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, entities.ComputeCommitment(addr, number).Hex())
	return nil
}

// addressArg returns args[i] as an address, falling back to the current identity
func (s *Shell) addressArg(args []string, i int) (common.Address, error) {
	if len(args) > i {
		return parseAddress(args[i])
	}
	return s.requireCaller()
}

func (s *Shell) handleFund(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: fund <amount> [address]")
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	addr, err := s.addressArg(args, 1)
	if err != nil {
		return err
	}

	account, err := s.handler.FundAccount(ctx, addr, amount)
	if err != nil {
		return err
	}
	s.logAction("fund", log.Fields{"address": addr.Hex(), "amount": amount})
	s.printSuccess("%s balance is now %s", addr.Hex(), formatNumber(account.Balance))
	return nil
}

func (s *Shell) handleBalance(ctx context.Context, args []string) error {
	addr, err := s.addressArg(args, 0)
	if err != nil {
		return err
	}
	balance, err := s.handler.Balance(ctx, addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: %s\n", addr.Hex(), formatNumber(balance))
	return nil
}

func (s *Shell) handleLedger(ctx context.Context, args []string) error {
	addr, err := s.addressArg(args, 0)
	if err != nil {
		return err
	}
	limit, err := parseLimit(args, 1, 20)
	if err != nil {
		return err
	}

	entries, err := s.handler.LedgerEntries(ctx, addr, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "No ledger entries")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		lottery := "-"
		if e.LotteryID != nil {
			lottery = strconv.FormatInt(*e.LotteryID, 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			string(e.EntryType),
			lottery,
			formatSignedNumber(e.Amount),
			formatNumber(e.BalanceAfter),
		})
	}
	fmt.Fprintln(s.out, formatTable([]string{"ID", "Type", "Lottery", "Amount", "Balance"}, rows))
	return nil
}

func (s *Shell) handleCreate(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: create <tickets> <price> [commit-reveal|block-hash] [number]")
	}
	creator, err := s.requireCaller()
	if err != nil {
		return err
	}
	total, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	price, err := parseAmount(args[1])
	if err != nil {
		return err
	}

	params := interfaces.CreateLotteryParams{
		Creator: creator,
		Config:  entities.LotteryConfig{TicketsTotal: total, TicketPrice: price, EntropyMode: entities.EntropyCommitReveal},
	}
	if len(args) > 2 {
		if params.Config.EntropyMode, err = parseEntropyMode(args[2]); err != nil {
			return err
		}
	}
	if len(args) > 3 {
		number, err := entities.ParseNumber(args[3])
		if err != nil {
			return err
		}
		var c common.Hash
		if params.Config.EntropyMode == entities.EntropyCommitReveal {
			c = entities.ComputeCommitment(creator, number)
		}
		params.InitialCommitment = &c
	}

	lottery, err := s.handler.CreateLottery(ctx, params)
	if err != nil {
		return err
	}
	s.logAction("create", log.Fields{"lottery_id": lottery.ID, "tickets_total": total, "ticket_price": price})
	s.printSuccess("lottery %d created (%s tickets at %s, %s)", lottery.ID, formatNumber(total), formatNumber(price), lottery.EntropyMode)
	return nil
}

func (s *Shell) handleList(ctx context.Context, args []string) error {
	limit, err := parseLimit(args, 0, 20)
	if err != nil {
		return err
	}
	lotteries, err := s.handler.ListLotteries(ctx, limit)
	if err != nil {
		return err
	}
	if len(lotteries) == 0 {
		fmt.Fprintln(s.out, "No lotteries")
		return nil
	}

	rows := make([][]string, 0, len(lotteries))
	for _, l := range lotteries {
		rows = append(rows, []string{
			strconv.FormatInt(l.ID, 10),
			string(l.State),
			string(l.EntropyMode),
			fmt.Sprintf("%d/%d", l.TicketsSold, l.TicketsTotal),
			formatNumber(l.TicketPrice),
			formatNumber(l.Pot),
		})
	}
	fmt.Fprintln(s.out, formatTable([]string{"ID", "State", "Entropy", "Sold", "Price", "Pot"}, rows))
	return nil
}

func (s *Shell) handleShow(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: show <lottery_id>")
	}
	id, err := parseLotteryID(args[0])
	if err != nil {
		return err
	}
	detail, err := s.handler.GetLottery(ctx, id)
	if err != nil {
		return err
	}

	l := detail.Lottery
	fmt.Fprintf(s.out, "Lottery %d [%s, %s]\n", l.ID, l.State, l.EntropyMode)
	fmt.Fprintf(s.out, "  Creator:  %s\n", l.Creator.Hex())
	fmt.Fprintf(s.out, "  Tickets:  %d/%d at %s\n", l.TicketsSold, l.TicketsTotal, formatNumber(l.TicketPrice))
	fmt.Fprintf(s.out, "  Pot:      %s\n", formatNumber(l.Pot))
	if l.EntropyAnchor != nil {
		fmt.Fprintf(s.out, "  Anchor:   block %d\n", *l.EntropyAnchor)
	}
	if l.Seed != nil {
		fmt.Fprintf(s.out, "  Seed:     %s\n", l.Seed.Hex())
	}
	if l.Winner != nil {
		fmt.Fprintf(s.out, "  Winner:   %s (ticket %d)\n", l.Winner.Hex(), *l.WinningIndex)
	}

	if len(detail.Tickets) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(detail.Tickets))
	for _, t := range detail.Tickets {
		revealed := "-"
		if t.RevealedValue != nil {
			revealed = t.RevealedValue.Dec()
		}
		rows = append(rows, []string{strconv.FormatUint(t.Index, 10), t.Owner.Hex(), revealed})
	}
	fmt.Fprintln(s.out, formatTable([]string{"Index", "Owner", "Revealed"}, rows))
	return nil
}

func (s *Shell) handleAvailable(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: available <lottery_id>")
	}
	id, err := parseLotteryID(args[0])
	if err != nil {
		return err
	}
	available, err := s.handler.TicketsAvailable(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s tickets available\n", formatNumber(available))
	return nil
}

func (s *Shell) handleBuy(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: buy <lottery_id> <number|-> [payment]")
	}
	caller, err := s.requireCaller()
	if err != nil {
		return err
	}
	id, err := parseLotteryID(args[0])
	if err != nil {
		return err
	}

	var c common.Hash
	if args[1] != "-" {
		number, err := entities.ParseNumber(args[1])
		if err != nil {
			return err
		}
		c = entities.ComputeCommitment(caller, number)
	}

	var payment uint64
	if len(args) > 2 {
		if payment, err = parseAmount(args[2]); err != nil {
			return err
		}
	} else if payment, err = s.handler.TicketPrice(ctx, id); err != nil {
		return err
	}

	ticket, err := s.handler.BuyTicket(ctx, id, caller, c, payment)
	if err != nil {
		return err
	}
	s.logAction("buy", log.Fields{"lottery_id": id, "ticket_index": ticket.Index})
	s.printSuccess("bought ticket %d of lottery %d", ticket.Index, id)
	return nil
}

func (s *Shell) handleReveal(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: reveal <lottery_id> <number>")
	}
	caller, err := s.requireCaller()
	if err != nil {
		return err
	}
	id, err := parseLotteryID(args[0])
	if err != nil {
		return err
	}
	number, err := entities.ParseNumber(args[1])
	if err != nil {
		return err
	}

	tickets, err := s.handler.RevealNumber(ctx, id, caller, number)
	if err != nil {
		return err
	}
	s.logAction("reveal", log.Fields{"lottery_id": id, "tickets": len(tickets)})
	s.printSuccess("revealed %d ticket(s)", len(tickets))
	return nil
}

func (s *Shell) handleWinner(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: winner <lottery_id>")
	}
	id, err := parseLotteryID(args[0])
	if err != nil {
		return err
	}
	winner, err := s.handler.Winner(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Winner: %s\n", winner.Hex())
	return nil
}

func (s *Shell) handleClaim(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: claim <lottery_id>")
	}
	caller, err := s.requireCaller()
	if err != nil {
		return err
	}
	id, err := parseLotteryID(args[0])
	if err != nil {
		return err
	}

	amount, err := s.handler.ClaimReward(ctx, id, caller)
	if err != nil {
		return err
	}
	s.logAction("claim", log.Fields{"lottery_id": id, "amount": amount})
	s.printSuccess("claimed %s from lottery %d", formatNumber(amount), id)
	return nil
}

func (s *Shell) handleEvents(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: events <lottery_id>")
	}
	id, err := parseLotteryID(args[0])
	if err != nil {
		return err
	}
	records, err := s.handler.Events(ctx, id)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(s.out, "No events")
		return nil
	}
	for _, r := range records {
		fmt.Fprintf(s.out, "%s  %-18s %s\n", r.CreatedAt.Format("15:04:05"), r.EventType, string(r.Payload))
	}
	return nil
}
