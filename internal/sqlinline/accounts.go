package sqlinline

const QAccountInsertIfAbsent = `--sql e39867a7-63c6-44e4-bd47-4346c9498bee
insert into accounts (id, display_name, email, avatar_url, balance, total_generations, total_remixes, created_at, updated_at)
values ($1, $2, $3, $4, $5, 0, 0, $6, $6)
on conflict (id) do nothing
returning id, display_name, email, avatar_url, balance, total_generations, total_remixes, created_at, updated_at;
`

const QAccountByID = `--sql 05483da9-5107-4c30-af7b-36fe4bae5963
select id, display_name, email, avatar_url, balance, total_generations, total_remixes, created_at, updated_at
from accounts
where id = $1;
`

// QAccountDebit only matches when the balance covers the amount, so the
// check and the decrement are one atomic statement.
const QAccountDebit = `--sql 2dcddee4-0553-4b25-868e-17d0f277119e
update accounts
set balance = balance - $2,
    updated_at = now()
where id = $1
  and balance >= $2
returning balance;
`

const QAccountCredit = `--sql 196aa00b-d218-4a3b-8951-692213204df7
update accounts
set balance = balance + $2,
    updated_at = now()
where id = $1
returning balance;
`

const QAccountExists = `--sql 36b9045a-899c-40fa-a4a1-30415d35919b
select exists(select 1 from accounts where id = $1);
`

const QAccountIncrementCounters = `--sql 51c3e16e-b29f-4b2e-8937-755afdbc662b
update accounts
set total_generations = total_generations + $2,
    total_remixes = total_remixes + $3,
    updated_at = now()
where id = $1;
`
